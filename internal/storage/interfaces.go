package storage

import (
	"context"

	"solana-token-launchpad/internal/domain"
)

// TokenStore provides access to the tokens catalog.
type TokenStore interface {
	// Insert adds a new token record. Returns ErrDuplicateKey if the id or
	// mint address already exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Token, error)

	// List retrieves up to limit tokens, newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.Token, error)

	// ListByCreator retrieves all tokens created by a wallet, newest first.
	ListByCreator(ctx context.Context, wallet string) ([]*domain.Token, error)

	// CountRecentByCreator counts tokens created by the wallet at or after
	// since (ms, inclusive). This is the rate-limit lookup.
	CountRecentByCreator(ctx context.Context, wallet string, since int64) (int, error)
}

// CommentStore provides access to token comments.
type CommentStore interface {
	// Insert adds a comment. Returns ErrDuplicateKey if the id exists and
	// ErrNotFound if the referenced token does not exist.
	Insert(ctx context.Context, c *domain.Comment) error

	// ListByToken retrieves all comments for a token, oldest first.
	ListByToken(ctx context.Context, tokenID string) ([]*domain.Comment, error)
}

// LaunchEventStore records creation analytics. Writes are best-effort:
// callers log and continue on failure.
type LaunchEventStore interface {
	// Insert adds one launch event.
	Insert(ctx context.Context, e *domain.LaunchEvent) error

	// CountSince counts events recorded at or after since (ms, inclusive).
	CountSince(ctx context.Context, since int64) (uint64, error)
}
