package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastOptions keeps test delays small while preserving the doubling shape.
func fastOptions() Options {
	return Options{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		BackoffMult:  2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastOptions(), func(context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	calls := 0
	var attemptTimes []time.Time

	result, err := Do(context.Background(), fastOptions(), func(context.Context) (string, error) {
		attemptTimes = append(attemptTimes, time.Now())
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)

	// Delay before the 3rd attempt is double the initial delay.
	require.Len(t, attemptTimes, 3)
	first := attemptTimes[1].Sub(attemptTimes[0])
	second := attemptTimes[2].Sub(attemptTimes[1])
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.GreaterOrEqual(t, second, 20*time.Millisecond)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	lastErr := errors.New("still broken")

	_, err := Do(context.Background(), fastOptions(), func(context.Context) (int, error) {
		calls++
		return 0, lastErr
	})

	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryablePropagatesImmediately(t *testing.T) {
	permanent := errors.New("insufficient funds")
	calls := 0

	opts := fastOptions()
	opts.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	_, err := Do(context.Background(), opts, func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "non-retryable error must not consume retry budget")
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := fastOptions()
	opts.InitialDelay = 5 * time.Second

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, opts, func(context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 1*time.Second, "cancel must abort the backoff wait")
}

func TestDo_OnRetryObservesAttempts(t *testing.T) {
	var attempts []int

	opts := fastOptions()
	opts.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_, _ = Do(context.Background(), opts, func(context.Context) (int, error) {
		return 0, errors.New("transient")
	})

	assert.Equal(t, []int{2, 3}, attempts)
}

func TestDoVoid(t *testing.T) {
	calls := 0
	err := DoVoid(context.Background(), fastOptions(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
