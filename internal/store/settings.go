package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSecret returns a random hex-encoded 32 byte secret.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// JWTSecret retrieves the JWT secret from the database. If no secret exists,
// it generates one, stores it, and returns it. INSERT OR IGNORE followed by a
// re-select keeps concurrent first starts consistent.
func (s *SQLite) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := NewSecret()
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var secret string
	err = s.db.GetContext(ctx, &secret,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}
