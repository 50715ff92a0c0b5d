package enrich

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelMap applies fn to every item using a bounded worker pool and
// returns the outputs in input order. The first error cancels outstanding
// work and is returned. workers <= 0 selects runtime.NumCPU().
func parallelMap[T, R any](ctx context.Context, items []T, workers int, fn func(T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []R{}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range items {
			// Checked up front so a canceled context never dispatches.
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for n := 0; n < workers; n++ {
		g.Go(func() error {
			for i := range jobs {
				r, err := fn(items[i])
				if err != nil {
					return err
				}
				out[i] = r
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
