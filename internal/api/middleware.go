package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/model"
)

type contextKey string

const claimsKey contextKey = "claims"

// RevocationChecker reports whether a session token was revoked.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates the bearer token, rejects revoked tokens and adds
// the claims to the request context.
func AuthMiddleware(secret string, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, newError(http.StatusUnauthorized, CodeUnauthorized, "missing or invalid authorization header"))
				return
			}

			claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, newError(http.StatusUnauthorized, CodeUnauthorized, "invalid token"))
				return
			}

			revoked, err := revocations.IsTokenRevoked(r.Context(), claims.ID)
			if err != nil {
				jsonError(w, newError(http.StatusInternalServerError, CodeStoreError, err.Error()))
				return
			}
			if revoked {
				jsonError(w, newError(http.StatusUnauthorized, CodeUnauthorized, "token revoked"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole returns middleware that checks if the user has at least the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				jsonError(w, newError(http.StatusUnauthorized, CodeUnauthorized, "not authenticated"))
				return
			}
			if !model.RoleAtLeast(claims.Role, minimum) {
				jsonError(w, newError(http.StatusForbidden, CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// actor returns the acting user's name for log lines.
func actor(r *http.Request) string {
	if c := GetClaims(r.Context()); c != nil {
		return c.Name
	}
	return ""
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs each request and records it in m when m is non-nil.
// Metrics are labelled with the matched route pattern.
func LoggingMiddleware(log zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			if m != nil {
				m.RecordHTTPRequest(r.Method, pattern, rec.status, elapsed)
			}

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.RequestURI()).
				Int("status", rec.status).
				Dur("duration", elapsed.Round(time.Millisecond)).
				Msg("request")
		})
	}
}
