package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// Templates holds parsed HTML templates, one per page, each combined with
// the layout.
type Templates struct {
	templates map[string]*template.Template
	log       zerolog.Logger
}

var pages = []string{
	"login.html",
	"movements.html",
	"balances.html",
	"partners.html",
	"crate_types.html",
	"users.html",
	"setup.html",
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleDriver:
				return "Driver"
			default:
				return role
			}
		},
		"directionName": func(d model.Direction) string {
			switch d {
			case model.DirectionOut:
				return "Out"
			case model.DirectionIn:
				return "In"
			default:
				return string(d)
			}
		},
		"balanceClass": func(n int) string {
			switch {
			case n > 0:
				return "owed"
			case n < 0:
				return "credit"
			default:
				return "zero"
			}
		},
		"qty": func(q float64) string {
			return fmt.Sprintf("%g", q)
		},
	}
}

// LoadTemplates parses all page templates with the layout from tfs.
func LoadTemplates(tfs fs.FS, log zerolog.Logger) (*Templates, error) {
	layout, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: log}
	for _, page := range pages {
		body, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(body)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with status 200.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		ts.log.Error().Err(err).Str("template", name).Msg("rendering template")
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Nav     string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Store     store.Store
	Users     *auth.Directory
	Templates *Templates
	JWTSecret string
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Charset   string
	Now       func() time.Time
}

// page builds the base page data for r: the signed-in user and any banner
// carried over from a redirect.
func (s *Server) page(r *http.Request, title, nav string) PageData {
	q := r.URL.Query()
	return PageData{
		Title:   title,
		Nav:     nav,
		User:    claims(r),
		Error:   q.Get("error"),
		Success: q.Get("ok"),
	}
}
