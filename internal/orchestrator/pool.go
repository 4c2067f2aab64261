package orchestrator

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of generation calls in flight. Tasks waiting for a
// slot are parked, never spinning, so slow calls do not stall siblings that
// already hold a slot.
type Pool struct {
	sem   *semaphore.Weighted
	limit int
}

// NewPool creates a Pool that allows at most limit concurrent calls.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit)), limit: limit}
}

// Limit returns the number of slots.
func (p *Pool) Limit() int {
	if p == nil {
		return 0
	}
	return p.limit
}

// Run acquires a slot, runs fn, and releases the slot. It returns ctx.Err()
// if the context ends while waiting. A nil Pool runs fn directly.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
