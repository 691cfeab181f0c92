package web

import (
	"errors"
	"net/http"

	"github.com/erazemk/ladak/internal/auth"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	pin := auth.NormalizePIN(r.FormValue("pin"))
	if pin == "" {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter your PIN.",
		})
		return
	}

	user, err := s.Users.Lookup(pin)
	if s.Metrics != nil {
		s.Metrics.RecordLogin(err == nil)
	}
	if err != nil {
		if !errors.Is(err, auth.ErrUnknownPIN) {
			s.Log.Error().Err(err).Msg("pin lookup")
		}
		s.Log.Warn().Str("remote", r.RemoteAddr).Msg("login failed")
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong PIN.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user)
	if err != nil {
		s.Log.Error().Err(err).Msg("generating token")
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Sign in",
			Error: "Sign in failed.",
		})
		return
	}

	setAuthCookie(w, token)
	s.Log.Info().Str("user", user.Name).Str("role", user.Role).Msg("user logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. The session token is revoked before the
// cookie is cleared.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	c := claims(r)
	if err := s.Store.RevokeToken(r.Context(), c.ID, c.ExpiresAt.Time); err != nil {
		s.Log.Error().Err(err).Str("user", c.Name).Msg("revoking token")
	}

	clearAuthCookie(w)
	s.Log.Info().Str("user", c.Name).Msg("user logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
