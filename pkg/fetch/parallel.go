package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelWorkers is the default parallel-fetch pool size (AR_PARALLEL_FETCH_WORKERS).
const DefaultParallelWorkers = 5

// MaxParallelWorkers bounds the pool regardless of configuration.
const MaxParallelWorkers = 10

// FetchAll fetches every URL through a bounded worker pool and returns
// results in input order regardless of completion order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, workers int) []*Page {
	workers = clampWorkers(workers, len(urls))
	results := make([]*Page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return nil
			}
			page, err := f.Fetch(gctx, u)
			if err != nil {
				page = &Page{URL: u}
			}
			results[i] = page
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func clampWorkers(requested, total int) int {
	if requested <= 0 {
		requested = DefaultParallelWorkers
	}
	if requested > MaxParallelWorkers {
		requested = MaxParallelWorkers
	}
	if total > 0 && requested > total {
		requested = total
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
