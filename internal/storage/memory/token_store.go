// Package memory provides in-memory store implementations for tests and
// the --use-memory server mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Token
	byMint map[string]*domain.Token
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byID:   make(map[string]*domain.Token),
		byMint: make(map[string]*domain.Token),
	}
}

var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token record. Returns ErrDuplicateKey if the id or
// mint address already exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" || t.MintAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byMint[t.MintAddress]; exists {
		return storage.ErrDuplicateKey
	}

	tokenCopy := *t
	s.byID[t.ID] = &tokenCopy
	s.byMint[t.MintAddress] = &tokenCopy
	return nil
}

// GetByID retrieves a token by ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, id string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	tokenCopy := *t
	return &tokenCopy, nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	tokenCopy := *t
	return &tokenCopy, nil
}

// List retrieves up to limit tokens, newest first.
func (s *TokenStore) List(_ context.Context, limit int) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedByCreatedDesc(func(*domain.Token) bool { return true })
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ListByCreator retrieves all tokens created by a wallet, newest first.
func (s *TokenStore) ListByCreator(_ context.Context, wallet string) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedByCreatedDesc(func(t *domain.Token) bool {
		return t.CreatorWallet == wallet
	}), nil
}

// CountRecentByCreator counts tokens created by the wallet at or after
// since (inclusive).
func (s *TokenStore) CountRecentByCreator(_ context.Context, wallet string, since int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.byID {
		if t.CreatorWallet == wallet && t.CreatedAt >= since {
			count++
		}
	}
	return count, nil
}

func (s *TokenStore) sortedByCreatedDesc(keep func(*domain.Token) bool) []*domain.Token {
	result := make([]*domain.Token, 0, len(s.byID))
	for _, t := range s.byID {
		if keep(t) {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})
	return result
}
