//go:build integration

package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/risingacademy/backend/storage/database"
	"github.com/risingacademy/backend/storage/database/dbtest"
	sqlxrepos "github.com/risingacademy/backend/storage/database/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("risingacademy"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable", "timezone=utc")
	require.NoError(t, err)
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Ping(ctx, db))
	require.NoError(t, database.Migrate(ctx, db.DB, "up"))
	return db
}

func truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE applications, settings, identities, users`)
	require.NoError(t, err)
}

func TestRepositories(t *testing.T) {
	db := openTestDB(t)

	t.Run("applications", func(t *testing.T) {
		truncate(t, db)
		dbtest.RunApplicationRepositoryTests(t, sqlxrepos.NewApplicationRepository(db))
	})

	t.Run("settings", func(t *testing.T) {
		truncate(t, db)
		dbtest.RunSettingsRepositoryTests(t, sqlxrepos.NewSettingsRepository(db))
	})

	t.Run("users", func(t *testing.T) {
		truncate(t, db)
		dbtest.RunUserRepositoryTests(t, sqlxrepos.NewUserRepository(db), sqlxrepos.NewCredentialRepository(db))
	})

	t.Run("migrate down and up", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, database.Migrate(ctx, db.DB, "reset"))
		require.NoError(t, database.Migrate(ctx, db.DB, "up"))
	})
}
