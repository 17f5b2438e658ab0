package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-go/internal/config"
	"github.com/recipebox/recipebox-go/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))
	return db
}

func createTestUser(t *testing.T, repo *UserRepository, phone string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     "user " + phone,
		Phone:        phone,
		PasswordHash: "$2a$10$not-a-real-hash",
		Role:         model.RoleCaterer,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
