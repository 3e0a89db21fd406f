// Package workerpool bounds how many background child-agent subprocesses
// the Chat Front-End may run concurrently (spec §4.9 "new "/"detached:"
// runs), grounded on the errgroup-based concurrency pattern used elsewhere
// in the example corpus (an errgroup.WithContext driving bounded parallel
// work, e.g. intelligencedev-manifold's WARPP orchestrator) rather than
// the teacher's own (unbounded-goroutine) Telegram handlers.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs submitted work on at most Limit goroutines at once. Submitted
// work that errors is logged by the caller via the returned error channel
// semantics of errgroup; Pool intentionally swallows per-task errors so one
// failed background run never cancels its siblings (unlike errgroup's
// default first-error-cancels-context behavior).
type Pool struct {
	group *errgroup.Group
	ctx   context.Context
}

// New creates a Pool bounded to limit concurrent goroutines, derived from
// ctx. limit <= 0 means unbounded.
func New(ctx context.Context, limit int) *Pool {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &Pool{group: g, ctx: gctx}
}

// Go submits fn to run on the pool, blocking only if the pool is already
// at its concurrency limit. fn's error, if any, is passed to onError
// instead of being propagated through the errgroup (so one failure
// doesn't cancel sibling work via the shared context).
func (p *Pool) Go(fn func(ctx context.Context) error, onError func(error)) {
	p.group.Go(func() error {
		if err := fn(p.ctx); err != nil && onError != nil {
			onError(err)
		}
		return nil
	})
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	_ = p.group.Wait()
}
