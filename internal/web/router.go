package web

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/store"
	webembed "github.com/erazemk/ladak/web"
)

// Config carries the page router dependencies. A nil Store serves the setup
// page on every route.
type Config struct {
	Store         store.Store
	Users         *auth.Directory
	JWTSecret     string
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	ExportCharset string
	Now           func() time.Time
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	tfs, err := webembed.TemplatesFS()
	if err != nil {
		return nil, err
	}
	templates, err := LoadTemplates(tfs, cfg.Logger)
	if err != nil {
		return nil, err
	}
	static, err := webembed.StaticFS()
	if err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		Store:     cfg.Store,
		Users:     cfg.Users,
		Templates: templates,
		JWTSecret: cfg.JWTSecret,
		Metrics:   cfg.Metrics,
		Log:       cfg.Logger,
		Charset:   cfg.ExportCharset,
		Now:       cfg.Now,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	if cfg.Store == nil {
		mux.HandleFunc("/", s.SetupPage)
		return mux, nil
	}

	cookieAuth := CookieAuthMiddleware(cfg.JWTSecret, cfg.Store, cfg.Logger)
	authed := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireAdmin(h)) }

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)

	mux.Handle("POST /logout", authed(s.Logout))

	mux.Handle("GET /{$}", authed(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/movements", http.StatusSeeOther)
	}))

	mux.Handle("GET /movements", authed(s.MovementsPage))
	mux.Handle("POST /movements", authed(s.MovementCreateSubmit))
	mux.Handle("POST /movements/{id}/delete", admin(s.MovementDeleteSubmit))

	mux.Handle("GET /balances", authed(s.BalancesPage))
	mux.Handle("GET /export.csv", authed(s.ExportCSV))

	mux.Handle("GET /partners", authed(s.PartnersPage))
	mux.Handle("POST /partners", admin(s.PartnerCreateSubmit))
	mux.Handle("POST /partners/{id}", admin(s.PartnerUpdateSubmit))
	mux.Handle("POST /partners/{id}/delete", admin(s.PartnerDeleteSubmit))

	mux.Handle("GET /crate-types", authed(s.CrateTypesPage))
	mux.Handle("POST /crate-types", admin(s.CrateTypeCreateSubmit))
	mux.Handle("POST /crate-types/{id}", admin(s.CrateTypeUpdateSubmit))
	mux.Handle("POST /crate-types/{id}/archive", admin(s.CrateTypeArchiveSubmit))
	mux.Handle("POST /crate-types/{id}/delete", admin(s.CrateTypeDeleteSubmit))
	mux.Handle("POST /crate-types/{id}/image", admin(s.CrateTypeImageSubmit))
	mux.Handle("GET /crate-types/{id}/image", authed(s.CrateTypeImageGet))

	mux.Handle("GET /users", admin(s.UsersPage))

	return mux, nil
}

// SetupPage tells the operator which settings are missing. It answers 503
// until the process is restarted with a store configured.
func (s *Server) SetupPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.RenderStatus(w, http.StatusServiceUnavailable, "setup.html", &struct {
		PageData
		Settings map[string]string
	}{
		PageData: PageData{Title: "Setup needed"},
		Settings: map[string]string{
			"DATABASE_URL":       "Postgres connection string, or LADAK_STORE_DATABASE_URL",
			"LADAK_STORE_DRIVER": "set to sqlite to use a local database file instead",
		},
	})
}
