// Package retry provides a generic retry-with-backoff decorator for
// remote operations. Policy lives here; failure classification lives with
// the callers, which pass a Retryable predicate over their tagged errors.
package retry

import (
	"context"
	"time"
)

// Default configuration values.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultBackoffMult  = 2.0
)

// Options configures a retry loop.
type Options struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt; it is multiplied
	// by BackoffMult after every failed attempt, capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	BackoffMult  float64
	// Retryable decides whether a failure consumes retry budget.
	// A nil predicate retries everything.
	Retryable func(error) bool
	// OnRetry is invoked before each re-attempt (attempt counts from 2).
	OnRetry func(attempt int, err error)
}

// DefaultOptions returns the standard policy: 3 attempts, 1s initial delay,
// exponential doubling.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		BackoffMult:  DefaultBackoffMult,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.BackoffMult <= 1 {
		o.BackoffMult = DefaultBackoffMult
	}
	return o
}

// Do runs op until it succeeds, fails a Retryable check, or exhausts
// MaxAttempts. The last observed error propagates. Context cancellation
// aborts the backoff wait and returns ctx.Err().
func Do[T any](ctx context.Context, opts Options, op func(context.Context) (T, error)) (T, error) {
	var zero T
	opts = opts.withDefaults()

	delay := opts.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * opts.BackoffMult)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, lastErr)
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if opts.Retryable != nil && !opts.Retryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// DoVoid wraps Do for operations without a result value.
func DoVoid(ctx context.Context, opts Options, op func(context.Context) error) error {
	_, err := Do(ctx, opts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
