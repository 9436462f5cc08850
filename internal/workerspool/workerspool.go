// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs batches of independent tasks on a bounded number of goroutines.
//
// Each worker owns its own state, created by the worker factory: computation graphs are not safe for
// concurrent use, so each worker builds its own.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Pool of workers.
type Pool struct {
	// maxParallelism is the maximum number of workers running at the same time.
	// If <= 0, tasks are run sequentially in the calling goroutine.
	maxParallelism int
}

// New return a new Pool of workers with the default parallelism (runtime.NumCPU()).
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism > 0).
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism > 0
}

// MaxParallelism is the maximum number of workers running at the same time.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// SetMaxParallelism sets the maximum number of workers. If set to 0 parallelism is disabled.
// It returns the Pool, so calls can be chained.
func (p *Pool) SetMaxParallelism(maxParallelism int) *Pool {
	p.maxParallelism = maxParallelism
	return p
}

// Task processes the task with the given index.
type Task func(index int) error

// NewWorkerFn creates the state of a worker, and returns the function that runs its tasks.
type NewWorkerFn func() (Task, error)

// Map runs the tasks 0 to numTasks-1, distributed over the workers created with newWorker.
// No more than numTasks workers are created.
//
// It returns the first error returned by a worker factory or task: once an error happens workers
// stop picking new tasks. Panics in tasks are converted to errors.
func (p *Pool) Map(numTasks int, newWorker NewWorkerFn) error {
	numWorkers := min(p.maxParallelism, numTasks)
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if klog.V(1).Enabled() {
		klog.Infof("workerspool: %d task(s) on %d worker(s)", numTasks, numWorkers)
	}

	var (
		next     atomic.Int64
		failed   atomic.Bool
		firstErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
	)
	setErr := func(err error) {
		errOnce.Do(func() { firstErr = err })
		failed.Store(true)
	}
	runWorker := func() {
		task, err := newWorker()
		if err != nil {
			setErr(errors.WithMessage(err, "workerspool: failed to create worker"))
			return
		}
		for !failed.Load() {
			index := int(next.Add(1) - 1)
			if index >= numTasks {
				return
			}
			var taskErr error
			panicErr := exceptions.TryCatch[error](func() { taskErr = task(index) })
			if panicErr != nil {
				taskErr = panicErr
			}
			if taskErr != nil {
				setErr(errors.WithMessagef(taskErr, "workerspool: task #%d", index))
				return
			}
		}
	}

	if !p.IsEnabled() {
		runWorker()
		return firstErr
	}
	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			runWorker()
		}()
	}
	wg.Wait()
	return firstErr
}
