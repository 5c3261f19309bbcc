package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/storage"
)

func testToken(id, mint, wallet string, createdAt int64) *domain.Token {
	return &domain.Token{
		ID:            id,
		CreatorWallet: wallet,
		Name:          "TestToken",
		Symbol:        "TT",
		Supply:        1000000,
		Decimals:      9,
		MintAddress:   mint,
		CreatedAt:     createdAt,
	}
}

func TestTokenStore_InsertAndGet(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	now := time.Now().UnixMilli()
	tok := testToken("id1", "mint1", "wallet1", now)
	tok.MintAuthority = nil
	freeze := "wallet1"
	tok.FreezeAuthority = &freeze

	if err := store.Insert(ctx, tok); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "id1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.MintAddress != "mint1" {
		t.Errorf("MintAddress mismatch: got %s, want mint1", got.MintAddress)
	}
	if got.MintAuthority != nil {
		t.Errorf("MintAuthority should be nil, got %v", *got.MintAuthority)
	}
	if got.FreezeAuthority == nil || *got.FreezeAuthority != "wallet1" {
		t.Errorf("FreezeAuthority mismatch: got %v", got.FreezeAuthority)
	}

	byMint, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if byMint.ID != "id1" {
		t.Errorf("ID mismatch: got %s, want id1", byMint.ID)
	}
}

func TestTokenStore_DuplicateKey(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testToken("id1", "mint1", "w1", 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.Insert(ctx, testToken("id1", "mint2", "w1", 2)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for duplicate id, got %v", err)
	}
	if err := store.Insert(ctx, testToken("id2", "mint1", "w1", 2)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for duplicate mint, got %v", err)
	}
}

func TestTokenStore_NotFound(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByMint(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenStore_ListNewestFirst(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tok := testToken(fmt.Sprintf("id%d", i), fmt.Sprintf("mint%d", i), "w1", int64(100+i))
		if err := store.Insert(ctx, tok); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt < all[i].CreatedAt {
			t.Errorf("tokens not sorted newest first at index %d", i)
		}
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(limited))
	}
	if limited[0].CreatedAt != 104 {
		t.Errorf("expected newest token first, got created_at %d", limited[0].CreatedAt)
	}
}

func TestTokenStore_ListByCreator(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	_ = store.Insert(ctx, testToken("id1", "mint1", "alice", 1))
	_ = store.Insert(ctx, testToken("id2", "mint2", "bob", 2))
	_ = store.Insert(ctx, testToken("id3", "mint3", "alice", 3))

	mine, err := store.ListByCreator(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByCreator failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(mine))
	}
	if mine[0].ID != "id3" {
		t.Errorf("expected newest first, got %s", mine[0].ID)
	}
}

func TestTokenStore_CountRecentByCreator_InclusiveBoundary(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	_ = store.Insert(ctx, testToken("id1", "mint1", "w1", 1000))

	// The cutoff is inclusive: a record exactly at since counts.
	count, err := store.CountRecentByCreator(ctx, "w1", 1000)
	if err != nil {
		t.Fatalf("CountRecentByCreator failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 at inclusive boundary, got %d", count)
	}

	count, _ = store.CountRecentByCreator(ctx, "w1", 1001)
	if count != 0 {
		t.Errorf("expected 0 past boundary, got %d", count)
	}

	count, _ = store.CountRecentByCreator(ctx, "other", 0)
	if count != 0 {
		t.Errorf("expected 0 for other wallet, got %d", count)
	}
}

func TestTokenStore_CopiesAreIsolated(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	tok := testToken("id1", "mint1", "w1", 1)
	_ = store.Insert(ctx, tok)

	got, _ := store.GetByID(ctx, "id1")
	got.Name = "mutated"

	again, _ := store.GetByID(ctx, "id1")
	if again.Name != "TestToken" {
		t.Errorf("store state leaked through returned pointer")
	}
}
