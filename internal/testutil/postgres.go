//go:build integration

package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/fkhayef/meetup/internal/database"
	"github.com/fkhayef/meetup/internal/database/migrations"
)

const postgresImage = "postgres:16-alpine"

// Env is a migrated Postgres instance running in a container
type Env struct {
	Container *postgres.PostgresContainer
	DSN       string
	DB        *bun.DB
}

// NewEnv starts Postgres, applies every migration and registers cleanup on t
func NewEnv(t *testing.T) *Env {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase("meetup"),
		postgres.WithUsername("meetup"),
		postgres.WithPassword("meetup"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewPostgresConnection(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, runMigrations(ctx, db))

	return &Env{Container: container, DSN: dsn, DB: db}
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Reset empties every domain table and keeps the region catalog
func (e *Env) Reset(t *testing.T) {
	t.Helper()
	_, err := e.DB.ExecContext(context.Background(), `
		TRUNCATE notifications, reviews, event_cities, event_joins, events,
			club_waitings, club_joins, clubs, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// Backdate moves an event into the past so it counts as ended
func (e *Env) Backdate(t *testing.T, eventID int64, ago time.Duration) {
	t.Helper()
	_, err := e.DB.NewUpdate().
		Table("events").
		Set("start_time = ?", time.Now().Add(-ago)).
		Set("end_time = ?", time.Now().Add(-ago/2)).
		Where("id = ?", eventID).
		Exec(context.Background())
	require.NoError(t, err)
}
