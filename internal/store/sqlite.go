package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is the default Store backed by a local SQLite database.
type SQLite struct {
	db *sqlx.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open database with the schema applied.
func NewSQLite(db *sqlx.DB) *SQLite {
	return &SQLite{db: db}
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
