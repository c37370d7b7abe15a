package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach calls fn(ctx, i) for every i in [0, n) on at most workers
// goroutines. fn reports its own failures; one item failing never stops
// the others. Once ctx is done no further items are started and ctx's
// error is returned.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) error {
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
