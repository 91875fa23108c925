package flow

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool runs processing stages with bounded parallelism. The first
// error cancels the pool's context; Wait returns it.
type Pool struct {
	g   *errgroup.Group
	ctx context.Context
	sem *semaphore.Weighted
}

// NewPool returns a pool running at most workers tasks at once.
// workers <= 0 uses GOMAXPROCS.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	return &Pool{
		g:   g,
		ctx: ctx,
		sem: semaphore.NewWeighted(int64(workers)),
	}
}

// Go submits a task. It waits for a worker slot, so a cancelled pool
// drops queued tasks instead of starting them.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.g.Go(func() error {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return err
		}
		defer p.sem.Release(1)
		return fn(p.ctx)
	})
}

// Wait blocks until all submitted tasks finish and returns the first
// error.
func (p *Pool) Wait() error {
	return p.g.Wait()
}
