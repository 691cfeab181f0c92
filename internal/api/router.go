package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// Config carries the router dependencies. A nil Store puts the API in setup
// mode: every route answers 503 CONFIG_MISSING.
type Config struct {
	Store         store.Store
	Users         *auth.Directory
	JWTSecret     string
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	ExportCharset string
	// Now returns the current time; tests pin it.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	if cfg.Store == nil {
		mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, errConfigMissing())
		})
		return mux
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	authHandler := &AuthHandler{Store: cfg.Store, Users: cfg.Users, JWTSecret: cfg.JWTSecret, Metrics: cfg.Metrics, Log: cfg.Logger}
	partnersHandler := &PartnersHandler{Store: cfg.Store, Log: cfg.Logger}
	crateTypesHandler := &CrateTypesHandler{Store: cfg.Store, Log: cfg.Logger}
	movementsHandler := &MovementsHandler{Store: cfg.Store, Metrics: cfg.Metrics, Log: cfg.Logger, Now: cfg.Now}
	ledgerHandler := &LedgerHandler{Store: cfg.Store, Log: cfg.Logger, Charset: cfg.ExportCharset, Now: cfg.Now}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.Store)
	requireAdmin := RequireRole(model.RoleAdmin)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))

	// Partners: read (all roles), write (admin).
	mux.Handle("GET /api/partners", authed(partnersHandler.List))
	mux.Handle("POST /api/partners", admin(partnersHandler.Create))
	mux.Handle("PATCH /api/partners/{id}", admin(partnersHandler.Update))
	mux.Handle("DELETE /api/partners/{id}", admin(partnersHandler.Delete))

	// Crate types: read (all roles), write (admin).
	mux.Handle("GET /api/crate-types", authed(crateTypesHandler.List))
	mux.Handle("POST /api/crate-types", admin(crateTypesHandler.Create))
	mux.Handle("PATCH /api/crate-types/{id}", admin(crateTypesHandler.Update))
	mux.Handle("DELETE /api/crate-types/{id}", admin(crateTypesHandler.Delete))
	mux.Handle("GET /api/crate-types/{id}/usage", admin(crateTypesHandler.Usage))
	mux.Handle("PUT /api/crate-types/{id}/image", admin(crateTypesHandler.UploadImage))
	mux.Handle("GET /api/crate-types/{id}/image", authed(crateTypesHandler.GetImage))

	// Movements: read and create (all roles), delete (admin).
	mux.Handle("GET /api/movements", authed(movementsHandler.List))
	mux.Handle("POST /api/movements", authed(movementsHandler.Create))
	mux.Handle("DELETE /api/movements/{id}", admin(movementsHandler.Delete))

	mux.Handle("GET /api/balances", authed(ledgerHandler.Balances))
	mux.Handle("GET /api/export.csv", authed(ledgerHandler.Export))

	return mux
}
