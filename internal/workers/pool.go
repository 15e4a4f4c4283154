// Package workers provides a bounded worker pool for the embarrassingly
// parallel stages of the pipeline. Every unit of work reads only its own
// input and writes only its own output slot, so no locking is required
// beyond the channel plumbing.
package workers

import (
	"runtime"
	"sync"
)

// Pool manages a fixed number of worker goroutines.
type Pool struct {
	numWorkers int
}

// NewPool creates a pool with the specified number of workers. Non-positive
// counts default to the number of CPUs.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{numWorkers: numWorkers}
}

type job[T any] struct {
	index int
	item  T
}

type result[R any] struct {
	index int
	value R
	err   error
}

// Map applies fn to every item in parallel and collects the results in input
// order. If any invocation fails, the first error (by input order) is
// returned and the results are discarded. All items are processed either way.
func Map[T, R any](p *Pool, items []T, fn func(T) (R, error)) ([]R, error) {
	numItems := len(items)
	if numItems == 0 {
		return []R{}, nil
	}

	jobs := make(chan job[T], numItems)
	results := make(chan result[R], numItems)

	numActualWorkers := p.numWorkers
	if numItems < numActualWorkers {
		numActualWorkers = numItems
	}

	var wg sync.WaitGroup
	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				value, err := fn(j.item)
				results <- result[R]{index: j.index, value: value, err: err}
			}
		}()
	}

	for idx, item := range items {
		jobs <- job[T]{index: idx, item: item}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	values := make([]R, numItems)
	errs := make([]error, numItems)
	for r := range results {
		values[r.index] = r.value
		errs[r.index] = r.err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}
