// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Map(t *testing.T) {
	for _, parallelism := range []int{0, 1, 4, 100} {
		pool := New().SetMaxParallelism(parallelism)
		const numTasks = 50
		results := make([]int, numTasks)
		var numWorkers atomic.Int32
		err := pool.Map(numTasks, func() (Task, error) {
			numWorkers.Add(1)
			return func(index int) error {
				results[index] = index * index
				return nil
			}, nil
		})
		require.NoError(t, err)
		for ii, got := range results {
			assert.Equalf(t, ii*ii, got, "parallelism=%d", parallelism)
		}
		assert.LessOrEqual(t, int(numWorkers.Load()), max(1, min(parallelism, numTasks)))
	}
}

func TestPool_WorkerState(t *testing.T) {
	pool := New().SetMaxParallelism(3)
	var mu sync.Mutex
	perWorker := make(map[*int]int)
	err := pool.Map(30, func() (Task, error) {
		state := new(int)
		return func(int) error {
			*state++
			mu.Lock()
			perWorker[state] = *state
			mu.Unlock()
			return nil
		}, nil
	})
	require.NoError(t, err)
	var total int
	for _, count := range perWorker {
		total += count
	}
	assert.Equal(t, 30, total)
}

func TestPool_Errors(t *testing.T) {
	pool := New().SetMaxParallelism(2)
	errTask := errors.New("task failed")
	err := pool.Map(10, func() (Task, error) {
		return func(index int) error {
			if index == 3 {
				return errTask
			}
			return nil
		}, nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTask))

	err = pool.Map(10, func() (Task, error) {
		return func(index int) error {
			if index == 5 {
				panic(errors.New("boom"))
			}
			return nil
		}, nil
	})
	require.ErrorContains(t, err, "boom")

	errWorker := errors.New("no worker")
	err = pool.Map(10, func() (Task, error) { return nil, errWorker })
	assert.True(t, errors.Is(err, errWorker))
}
