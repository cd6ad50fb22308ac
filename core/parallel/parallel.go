// Package parallel provides chunked fan-out helpers for CPU-bound work
// such as per-column profiling and chart rendering.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items into contiguous chunks, one per worker, and
// invokes fn(start, end) for each chunk on its own goroutine. It returns
// once every chunk has been processed. fn must be safe to call from
// multiple goroutines on disjoint ranges.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := start + chunk
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items is at or below threshold, and fans out like Parallelize otherwise.
// Small inputs are not worth the goroutine overhead.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
