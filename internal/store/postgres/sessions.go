package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/ladak/internal/store"
)

func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := store.NewSecret()
	if err != nil {
		return "", err
	}

	var secret string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO settings (key, value) VALUES ('jwt_secret', $1)
		 ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		 RETURNING value`,
		candidate,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return secret, nil
}

func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	_, _ = s.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, time.Now().Unix())
	return nil
}

func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
