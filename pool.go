package sectio

import (
	"context"
	"runtime"
	"sync"
)

// PoolResult pairs one file's path with its Parse outcome, since Pool
// processes many documents concurrently and results arrive out of order.
type PoolResult struct {
	Path   string
	Result *Result
	Err    error
}

// Pool runs opts.Run (with Path overridden per file) across paths using a
// bounded number of workers, §5's "a bounded worker pool shares one section
// database across documents" model. A workers value of zero or less
// defaults to runtime.NumCPU(). The section database should be set via
// opts.WithDatabase so every worker commits to the same store rather than
// each opening its own file.
func Pool(ctx context.Context, opts *ParseOptions, paths []string, workers int) []PoolResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers == 0 {
		return nil
	}

	jobs := make(chan string)
	results := make([]PoolResult, len(paths))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				idx := pathIndex(paths, path)
				c := opts.clone()
				c.path = path
				res, err := c.Run(ctx)
				results[idx] = PoolResult{Path: path, Result: res, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return results
}

// pathIndex finds path's position in paths. Paths are expected to be
// distinct; a duplicate path's later result simply overwrites the earlier
// one's slot.
func pathIndex(paths []string, path string) int {
	for i, p := range paths {
		if p == path {
			return i
		}
	}
	return -1
}
