// Package retry provides a generic retry-with-backoff executor for
// operations against external services.
package retry

import (
	"context"
	"time"

	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

// Policy configures retry behavior
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Must be >= 1.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt
	InitialDelay time.Duration

	// BackoffFactor multiplies the delay after each attempt. Must be > 1.
	BackoffFactor float64

	// Sleep waits for the given duration or until the context is done.
	// Injectable for tests; nil uses the wall clock.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the retry policy used by the AI backend clients
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2.0,
	}
}

func sleepWallClock(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Do runs op up to policy.MaxAttempts times with exponential backoff between
// attempts. It stops immediately when the error is classified non-retryable
// (a service error without the retryable tag, or a validation error); all
// other errors exhaust the attempt budget. The last error is returned
// unmodified.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepWallClock
	}

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
			delay = time.Duration(float64(delay) * policy.BackoffFactor)
		}

		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				logging.From(ctx).Info("operation recovered after retries",
					"attempts", attempt,
				)
			}
			return result, nil
		}

		lastErr = err
		if !types.IsRetryable(err) {
			return zero, err
		}

		if attempt < policy.MaxAttempts {
			logging.From(ctx).Warn("retrying after transient error",
				"attempt", attempt,
				"max_attempts", policy.MaxAttempts,
				"delay", delay,
				"error", err.Error(),
			)
		}
	}

	return zero, lastErr
}
