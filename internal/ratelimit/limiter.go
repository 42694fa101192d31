// Package ratelimit gates network dispatches with a FIFO concurrency cap and
// a minimum spacing between dispatch starts.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter is safe for concurrent use. A zero limit disables that control.
type Limiter struct {
	slots   *semaphore.Weighted
	spacing *rate.Limiter
}

// New creates a Limiter allowing at most maxConcurrent holders at once, with
// successive acquisitions at least minInterval apart.
func New(maxConcurrent int, minInterval time.Duration) *Limiter {
	limiter := &Limiter{}

	if maxConcurrent > 0 {
		limiter.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}

	if minInterval > 0 {
		limiter.spacing = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	return limiter
}

// Acquire blocks until a slot is free and the spacing interval has elapsed.
// The returned release func must be called once the dispatch completes.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	release := func() {}

	if l.slots != nil {
		err := l.slots.Acquire(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}

		release = func() { l.slots.Release(1) }
	}

	if l.spacing != nil {
		err := l.spacing.Wait(ctx)
		if err != nil {
			release()

			return nil, fmt.Errorf("waiting for request spacing: %w", err)
		}
	}

	return release, nil
}

// Enabled reports whether any control is active.
func (l *Limiter) Enabled() bool {
	return l.slots != nil || l.spacing != nil
}
