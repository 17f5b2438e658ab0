// Package testhelpers provides fixtures shared by package tests.
package testhelpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/recipebox/recipebox-go/internal/config"
	"github.com/recipebox/recipebox-go/internal/repository"
)

// NewSQLiteDB returns a migrated, private in-memory database that is closed
// when the test ends.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := repository.NewDB(ctx, config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := repository.Migrate(ctx, db, config.DriverSQLite); err != nil {
		t.Fatalf("migrating sqlite: %v", err)
	}

	return db
}
