package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-launchpad/internal/domain"
)

func testEvent(wallet, mint string, createdAt int64) *domain.LaunchEvent {
	return &domain.LaunchEvent{
		Wallet:          wallet,
		Mint:            mint,
		Symbol:          "DOGE2",
		Supply:          1_000_000,
		Decimals:        9,
		RevokedMint:     true,
		RevokedFreeze:   true,
		RevokedMetadata: false,
		DurationMs:      4200,
		CreatedAt:       createdAt,
	}
}

func TestLaunchEventStore_InsertAndCountSince(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLaunchEventStore(conn)
	ctx := context.Background()

	base := int64(1700000000000)
	require.NoError(t, store.Insert(ctx, testEvent("WalletA", "Mint1", base-1)))
	require.NoError(t, store.Insert(ctx, testEvent("WalletA", "Mint2", base)))
	require.NoError(t, store.Insert(ctx, testEvent("WalletB", "Mint3", base+1)))

	// Boundary is inclusive.
	count, err := store.CountSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	count, err = store.CountSince(ctx, base+2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestLaunchEventStore_CountEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLaunchEventStore(conn)

	count, err := store.CountSince(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
