package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Store     store.Store
	Users     *auth.Directory
	JWTSecret string
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
}

type loginRequest struct {
	PIN string `json:"pin" validate:"required"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeAndValidate(w, r, &req, func() { req.PIN = auth.NormalizePIN(req.PIN) }); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	user, err := h.Users.Lookup(req.PIN)
	if h.Metrics != nil {
		h.Metrics.RecordLogin(err == nil)
	}
	if errors.Is(err, auth.ErrUnknownPIN) {
		h.Log.Warn().Str("remote", r.RemoteAddr).Msg("login failed")
		jsonError(w, newError(http.StatusUnauthorized, CodeUnauthorized, "invalid PIN"))
		return
	}
	if err != nil {
		jsonError(w, newError(http.StatusInternalServerError, CodeInternal, err.Error()))
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user)
	if err != nil {
		jsonError(w, newError(http.StatusInternalServerError, CodeInternal, "failed to generate token"))
		return
	}

	h.Log.Info().Str("user", user.Name).Str("role", user.Role).Msg("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if err := h.Store.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		jsonError(w, StoreError(h.Log, "token", claims.ID, err))
		return
	}

	h.Log.Info().Str("user", claims.Name).Msg("user logged out")
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, GetClaims(r.Context()).User())
}

// pathID returns the trimmed {id} path value.
func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}
