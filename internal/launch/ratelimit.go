package launch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"solana-token-launchpad/internal/storage"
)

// ErrRateLimited is the fixed caller-visible rate-limit rejection.
var ErrRateLimited = errors.New("Rate limit exceeded: Only 1 token per wallet per minute allowed")

// DefaultRateLimitWindow is the trailing admission window per wallet.
const DefaultRateLimitWindow = 60 * time.Second

// RateLimiter admits at most one creation per wallet per trailing window,
// backed by the token catalog. A per-wallet mutex serializes the
// check-then-insert sequence within this process; concurrent instances
// sharing one database can still race, which callers must accept.
type RateLimiter struct {
	store  storage.TokenStore
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	wallets map[string]*sync.Mutex
}

// NewRateLimiter creates a limiter over the token catalog. window <= 0
// selects DefaultRateLimitWindow.
func NewRateLimiter(store storage.TokenStore, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		store:   store,
		window:  window,
		now:     time.Now,
		wallets: make(map[string]*sync.Mutex),
	}
}

// Acquire checks the wallet's admission window and, when admitted, holds
// the wallet's lock until release is called. The window boundary is
// inclusive: a record created exactly window ago still blocks.
func (r *RateLimiter) Acquire(ctx context.Context, wallet string) (release func(), err error) {
	wm := r.walletMutex(wallet)
	wm.Lock()

	cutoff := r.now().Add(-r.window).UnixMilli()
	count, err := r.store.CountRecentByCreator(ctx, wallet, cutoff)
	if err != nil {
		wm.Unlock()
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if count > 0 {
		wm.Unlock()
		return nil, ErrRateLimited
	}

	var once sync.Once
	return func() { once.Do(wm.Unlock) }, nil
}

func (r *RateLimiter) walletMutex(wallet string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	wm, ok := r.wallets[wallet]
	if !ok {
		wm = &sync.Mutex{}
		r.wallets[wallet] = wm
	}
	return wm
}
