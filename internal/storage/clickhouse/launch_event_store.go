package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/observability"
	"solana-token-launchpad/internal/storage"
)

// LaunchEventStore implements storage.LaunchEventStore using ClickHouse.
// MergeTree does not enforce uniqueness; duplicate events are tolerated
// since the table is analytics-only.
type LaunchEventStore struct {
	conn *Conn
}

// NewLaunchEventStore creates a new LaunchEventStore.
func NewLaunchEventStore(conn *Conn) *LaunchEventStore {
	return &LaunchEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.LaunchEventStore = (*LaunchEventStore)(nil)

// Insert adds one launch event.
func (s *LaunchEventStore) Insert(ctx context.Context, e *domain.LaunchEvent) error {
	query := `
		INSERT INTO launch_events (
			wallet, mint, symbol, supply, decimals,
			revoked_mint, revoked_freeze, revoked_metadata,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	start := time.Now()
	err := s.conn.Exec(ctx, query,
		e.Wallet, e.Mint, e.Symbol, e.Supply, e.Decimals,
		e.RevokedMint, e.RevokedFreeze, e.RevokedMetadata,
		uint64(e.DurationMs), uint64(e.CreatedAt),
	)
	observability.RecordDBQuery("clickhouse", "insert_launch_event", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("insert launch event: %w", err)
	}
	return nil
}

// CountSince counts events recorded at or after since (ms, inclusive).
func (s *LaunchEventStore) CountSince(ctx context.Context, since int64) (uint64, error) {
	query := `SELECT count(*) FROM launch_events WHERE created_at >= ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, uint64(since)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count launch events: %w", err)
	}
	return count, nil
}
