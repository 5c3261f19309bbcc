package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/storage"
)

// CommentStore is an in-memory implementation of storage.CommentStore.
// Token existence checks are delegated to the paired TokenStore.
type CommentStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Comment
	byToken map[string][]*domain.Comment
	tokens  *TokenStore
}

// NewCommentStore creates a new in-memory comment store. tokens may be nil
// to skip referential checks.
func NewCommentStore(tokens *TokenStore) *CommentStore {
	return &CommentStore{
		byID:    make(map[string]*domain.Comment),
		byToken: make(map[string][]*domain.Comment),
		tokens:  tokens,
	}
}

var _ storage.CommentStore = (*CommentStore)(nil)

// Insert adds a comment. Returns ErrDuplicateKey if the id exists and
// ErrNotFound if the referenced token does not exist.
func (s *CommentStore) Insert(ctx context.Context, c *domain.Comment) error {
	if c == nil || c.ID == "" || c.TokenID == "" || c.Content == "" {
		return storage.ErrInvalidInput
	}

	if s.tokens != nil {
		if _, err := s.tokens.GetByID(ctx, c.TokenID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; exists {
		return storage.ErrDuplicateKey
	}

	commentCopy := *c
	s.byID[c.ID] = &commentCopy
	s.byToken[c.TokenID] = append(s.byToken[c.TokenID], &commentCopy)
	return nil
}

// ListByToken retrieves all comments for a token, oldest first.
func (s *CommentStore) ListByToken(_ context.Context, tokenID string) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := s.byToken[tokenID]
	result := make([]*domain.Comment, 0, len(comments))
	for _, c := range comments {
		commentCopy := *c
		result = append(result, &commentCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
