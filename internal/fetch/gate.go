// Package fetch owns the boundary concerns around the pure compute
// engine: serializing large-file downloads and pacing bulk runs so the
// origin is never hammered.
package fetch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate allows at most one in-flight fetch system-wide. Waiters queue
// in FIFO order on the underlying semaphore. Acquire before fetching,
// release after the fetch finishes or fails.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a single-slot fetch gate
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the gate is free or the context is done
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire takes the gate without blocking
func (g *Gate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release frees the gate for the next waiter
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Do runs fn while holding the gate. The gate is released whether fn
// succeeds or fails.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if err := g.Acquire(ctx); err != nil {
		return nil, err
	}
	defer g.Release()
	return fn(ctx)
}
