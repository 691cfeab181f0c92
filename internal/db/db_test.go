package db

import (
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var tables int
	err := database.Get(&tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		 AND name IN ('partners', 'crate_types', 'movements', 'settings', 'revoked_tokens')`)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if tables != 5 {
		t.Errorf("expected 5 tables, got %d", tables)
	}
}

func TestOpenFileUsesWAL(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "ladak.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	var mode string
	if err := database.Get(&mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode wal, got %q", mode)
	}

	var timeout int
	if err := database.Get(&timeout, `PRAGMA busy_timeout`); err != nil {
		t.Fatalf("reading busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestMovementDirectionCheck(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO movements (id, partner_id, crate_type_id, direction, qty, created_at)
		VALUES ('m1', 'p1', 'E2', 'sideways', 1, 0)`)
	if err == nil {
		t.Error("expected CHECK constraint to reject unknown direction")
	}
}
