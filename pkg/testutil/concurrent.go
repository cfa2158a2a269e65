// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"
	"sync/atomic"
)

// ConcurrentResult tallies the outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	// ByKind counts errors by the label returned from the classifier.
	ByKind map[string]int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors
}

// RunConcurrent runs fn in n goroutines, released together, and waits for all of them.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	return RunConcurrentClassified(n, fn, nil)
}

// RunConcurrentClassified is RunConcurrent with errors grouped by classify.
// A nil classify groups every error under "error".
func RunConcurrentClassified(n int, fn func(idx int) error, classify func(error) string) *ConcurrentResult {
	if classify == nil {
		classify = func(error) string { return "error" }
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes atomic.Int32
		errs      atomic.Int32
		start     = make(chan struct{})
		byKind    = make(map[string]int32)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			if err == nil {
				successes.Add(1)
				return
			}
			errs.Add(1)
			kind := classify(err)
			mu.Lock()
			byKind[kind]++
			mu.Unlock()
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		ByKind:    byKind,
	}
}
