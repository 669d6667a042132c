package test_utils

import (
	"database/sql"
	"testing"

	"github.com/dsg-innosource/data-platform/internal/config"
	"github.com/dsg-innosource/data-platform/internal/database"
	_ "modernc.org/sqlite" // Import the SQLite driver
)

// NewInMemoryDB creates a new in-memory SQLite database for testing.
// Each database is completely isolated from others.
func NewInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// The warehouse schema is written through a single connection; an
	// in-memory SQLite database vanishes when its connection closes, so
	// keep exactly one.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupTestDB creates a new in-memory SQLite database and applies the
// embedded warehouse migrations.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewInMemoryDB(t)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := database.Migrate(db, config.EngineSQLite); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return db
}
