package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/observability"
	"solana-token-launchpad/internal/storage"
)

// CommentStore implements storage.CommentStore using PostgreSQL.
type CommentStore struct {
	pool *Pool
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(pool *Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CommentStore = (*CommentStore)(nil)

// Insert adds a comment. Returns ErrDuplicateKey if the id exists and
// ErrNotFound if the referenced token does not exist.
func (s *CommentStore) Insert(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (id, token_id, wallet_address, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		c.ID,
		c.TokenID,
		c.WalletAddress,
		c.Content,
		c.CreatedAt,
	)
	observability.RecordDBQuery("postgres", "insert_comment", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByToken retrieves all comments for a token, oldest first.
func (s *CommentStore) ListByToken(ctx context.Context, tokenID string) ([]*domain.Comment, error) {
	query := `
		SELECT id, token_id, wallet_address, content, created_at
		FROM comments
		WHERE token_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var result []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return result, nil
}

// scanComment scans a single row into a Comment.
func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(
		&c.ID,
		&c.TokenID,
		&c.WalletAddress,
		&c.Content,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
