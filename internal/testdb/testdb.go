// Package testdb provides a shared test database helper for fast,
// realistic testing against an in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/mt2mw/infrastructure/persistence"
	"github.com/helixml/mt2mw/internal/database"
)

// New creates an in-memory SQLite database holding an empty file table.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	return WithTable(t, persistence.DefaultImageTable)
}

// WithTable is like New with a custom file table name.
func WithTable(t *testing.T, table string) database.Database {
	t.Helper()
	ctx := context.Background()
	db := NewPlain(t)
	if err := persistence.AutoMigrate(ctx, db, table); err != nil {
		t.Fatalf("testdb.WithTable: auto migrate: %v", err)
	}
	return db
}

// NewPlain creates an in-memory SQLite database without any tables.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.NewPlain: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
