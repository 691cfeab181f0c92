package web

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/model"
)

const cookieName = "token"

// CookieAuthMiddleware validates the session cookie, checks token revocation,
// and adds claims to the context. Anything else is sent to the login page.
func CookieAuthMiddleware(secret string, revocations api.RevocationChecker, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			c, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			revoked, err := revocations.IsTokenRevoked(r.Context(), c.ID)
			if err != nil {
				log.Error().Err(err).Msg("checking token revocation")
				http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if revoked {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(api.WithClaims(r.Context(), c)))
		})
	}
}

// requireAdmin rejects non-admin users with 403.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := claims(r)
		if c == nil || !model.RoleAtLeast(c.Role, model.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func claims(r *http.Request) *auth.Claims {
	return api.GetClaims(r.Context())
}

func userName(r *http.Request) string {
	if c := claims(r); c != nil {
		return c.Name
	}
	return ""
}

// redirectError sends the user back to path with an error banner.
func redirectError(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectWith(w, r, path, "error", msg)
}

// redirectOK sends the user back to path with a success banner.
func redirectOK(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectWith(w, r, path, "ok", msg)
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	u, err := url.Parse(path)
	if err != nil {
		u = &url.URL{Path: path}
	}
	q := u.Query()
	q.Set(key, msg)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// back returns the local page to return to after a form post, from the
// "return" form field, falling back to def.
func back(r *http.Request, def string) string {
	ret := r.FormValue("return")
	u, err := url.Parse(ret)
	if ret == "" || err != nil || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return def
	}
	q := u.Query()
	q.Del("error")
	q.Del("ok")
	u.RawQuery = q.Encode()
	return u.String()
}
