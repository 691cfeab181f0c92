package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/config"
	"github.com/erazemk/ladak/internal/db"
	"github.com/erazemk/ladak/internal/store"
	"github.com/erazemk/ladak/internal/store/postgres"
)

// openStore opens the configured backend and ensures its schema. A postgres
// driver without a database URL returns an error wrapping
// store.ErrConfigMissing.
func openStore(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Driver).Msg("database ready")
		return s, nil

	case config.DriverSQLite:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, fmt.Errorf("ensuring schema: %w", err)
		}
		log.Info().Str("driver", cfg.Driver).Str("path", cfg.SQLitePath).Msg("database ready")
		return store.NewSQLite(database), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// jwtSecret returns the configured signing secret, or the one persisted in
// the store, generated on first use.
func jwtSecret(ctx context.Context, cfg config.AuthConfig, s store.Store) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	if s == nil {
		return store.NewSecret()
	}
	secret, err := s.JWTSecret(ctx)
	if err != nil {
		return "", fmt.Errorf("loading JWT secret: %w", err)
	}
	return secret, nil
}
