package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// evaluations schema. Returns a cleanup function that must be called after
// tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	// The migrations package imports this one, so the schema is applied
	// inline here rather than through it.
	_, err = pool.Exec(ctx, evaluationsSchema)
	require.NoError(t, err, "failed to apply schema")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}

// evaluationsSchema mirrors internal/storage/migrations/postgres/001_evaluations.sql.
const evaluationsSchema = `
CREATE TABLE IF NOT EXISTS evaluations (
    scenario_id         TEXT PRIMARY KEY,
    amount_in           TEXT NOT NULL,
    quote1_out          TEXT NOT NULL,
    quote1_min_out      TEXT NOT NULL,
    quote2_out          TEXT NOT NULL,
    quote2_min_out      TEXT NOT NULL,
    min_profit          TEXT NOT NULL,
    fee_estimate        TEXT NOT NULL,
    profit              TEXT NOT NULL,
    conservative_profit TEXT NOT NULL,
    profitable          BOOLEAN NOT NULL,
    mint                TEXT,
    pool                TEXT,
    evaluated_at        BIGINT NOT NULL,
    created_at          BIGINT NOT NULL DEFAULT (extract(epoch FROM now()) * 1000)::BIGINT
);
CREATE INDEX IF NOT EXISTS idx_evaluations_evaluated_at ON evaluations (evaluated_at);
`
