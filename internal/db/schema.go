package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. Movements keep plain partner and crate
// type ids without foreign keys: deleting a partner or crate type leaves its
// history in place.
const schema = `
CREATE TABLE IF NOT EXISTS partners (
    id      TEXT PRIMARY KEY,
    name    TEXT NOT NULL,
    contact TEXT NOT NULL DEFAULT '',
    note    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS crate_types (
    id         TEXT PRIMARY KEY,
    label      TEXT NOT NULL,
    archived   INTEGER NOT NULL DEFAULT 0,
    image      BLOB,
    image_mime TEXT
);

CREATE TABLE IF NOT EXISTS movements (
    id            TEXT PRIMARY KEY,
    partner_id    TEXT NOT NULL,
    crate_type_id TEXT NOT NULL,
    direction     TEXT NOT NULL CHECK (direction IN ('out', 'in')),
    qty           REAL NOT NULL,
    date          TEXT NOT NULL DEFAULT '',
    note          TEXT NOT NULL DEFAULT '',
    driver_name   TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at INTEGER NOT NULL
);
`

// migrations are applied in order after schema creation. Each must be
// idempotent. Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_movements_created_at ON movements(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_crate_type ON movements(crate_type_id)`,
}

// EnsureSchema creates all tables and indexes and runs pending migrations.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
