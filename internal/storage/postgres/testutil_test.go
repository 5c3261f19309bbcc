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
// embedded schema. Returns a cleanup function that must be called after
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

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the tokens and comments tables. The migrations
// package embeds the same DDL but importing it here would be a cycle,
// so the schema is inlined.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			id                TEXT PRIMARY KEY,
			creator_wallet    TEXT NOT NULL,
			name              TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			description       TEXT,
			image_url         TEXT,
			supply            BIGINT NOT NULL,
			decimals          SMALLINT NOT NULL,
			mint_address      TEXT NOT NULL UNIQUE,
			mint_authority    TEXT,
			freeze_authority  TEXT,
			metadata_uri      TEXT,
			payment_signature TEXT NOT NULL,
			verified_mint     BOOLEAN NOT NULL DEFAULT FALSE,
			verified_freeze   BOOLEAN NOT NULL DEFAULT FALSE,
			verified_metadata BOOLEAN NOT NULL DEFAULT FALSE,
			created_at        BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id             TEXT PRIMARY KEY,
			token_id       TEXT NOT NULL REFERENCES tokens (id) ON DELETE CASCADE,
			wallet_address TEXT NOT NULL,
			content        TEXT NOT NULL,
			created_at     BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err, "failed to apply schema")
	}
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}
