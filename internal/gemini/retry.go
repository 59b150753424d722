package gemini

import (
	"context"
	"time"
)

// RetryPolicy retries transient generation failures with exponential
// backoff. Sleep is injectable so tests can run against a fake clock.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff returns the delay before retry number attempt (0-based).
	Backoff func(attempt int) time.Duration
	// Sleep waits for the given duration or until the context is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the generation contract: up to 1 + 2
// attempts with 1s * 2^attempt between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		Sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Do runs fn until it succeeds or the attempt budget is exhausted,
// returning the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.Sleep(ctx, p.Backoff(attempt-1)); err != nil {
				return err
			}
		}
		if err := fn(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
