// Package batch runs per-item workers over many inputs in fixed-size
// chunks with bounded concurrency and per-item failure isolation.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is how many workers run concurrently per chunk.
	DefaultChunkSize = 3
	// DefaultChunkDelay is the pause between chunks, to stay under
	// external provider rate limits. No delay follows the final chunk.
	DefaultChunkDelay = 500 * time.Millisecond
)

// Runner executes workers chunk by chunk. Chunk N+1 does not start until
// every worker of chunk N has settled.
type Runner struct {
	chunkSize int
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithChunkSize overrides the concurrent chunk size.
func WithChunkSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

// WithChunkDelay overrides the inter-chunk delay.
func WithChunkDelay(d time.Duration) Option {
	return func(r *Runner) { r.delay = d }
}

// WithSleep replaces the inter-chunk sleep. Tests inject a recording
// no-op here instead of waiting on a real clock.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRunner creates a runner with the default chunk size and delay.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		chunkSize: DefaultChunkSize,
		delay:     DefaultChunkDelay,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run applies worker to every item. A worker panic or returned error is
// recorded as that item's failure and never aborts the batch. Results are
// returned in input order.
func Run[T, R any](ctx context.Context, r *Runner, items []T, worker func(ctx context.Context, item T) (R, error)) []Outcome[R] {
	outcomes := make([]Outcome[R], len(items))

	for start := 0; start < len(items); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(items) {
			end = len(items)
		}

		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				outcomes[i] = runOne(ctx, items[i], worker)
				return nil
			})
		}
		// Workers never return errors through the group; failures live
		// in their outcome slot.
		_ = g.Wait()

		if end < len(items) {
			if err := r.sleep(ctx, r.delay); err != nil {
				for i := end; i < len(items); i++ {
					outcomes[i] = Outcome[R]{Err: err}
				}
				break
			}
		}
	}

	return outcomes
}

// Outcome is one item's settled result.
type Outcome[R any] struct {
	Result R
	Err    error
}

func runOne[T, R any](ctx context.Context, item T, worker func(ctx context.Context, item T) (R, error)) (outcome Outcome[R]) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Outcome[R]{Err: fmt.Errorf("worker panic: %v", rec)}
		}
	}()

	result, err := worker(ctx, item)
	return Outcome[R]{Result: result, Err: err}
}
