package memory

import (
	"context"
	"sync"

	"solana-token-launchpad/internal/domain"
	"solana-token-launchpad/internal/storage"
)

// LaunchEventStore is an in-memory implementation of storage.LaunchEventStore.
type LaunchEventStore struct {
	mu     sync.RWMutex
	events []*domain.LaunchEvent
}

// NewLaunchEventStore creates a new in-memory launch event store.
func NewLaunchEventStore() *LaunchEventStore {
	return &LaunchEventStore{}
}

var _ storage.LaunchEventStore = (*LaunchEventStore)(nil)

// Insert adds one launch event.
func (s *LaunchEventStore) Insert(_ context.Context, e *domain.LaunchEvent) error {
	if e == nil || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	return nil
}

// CountSince counts events recorded at or after since (inclusive).
func (s *LaunchEventStore) CountSince(_ context.Context, since int64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	for _, e := range s.events {
		if e.CreatedAt >= since {
			count++
		}
	}
	return count, nil
}
