// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	// Never test with the same slice on both sides: it hides swapped arguments.
	first := []int{1, 4, 2, 3, 5, 6, 10, 11, 8}
	second := []int{11, 10, 21, 18, 17}
	pairs := Intersect(first, second, func(a, b int) bool { return a == b-10 })
	require.Len(t, pairs, 3)
	assert.Equal(t, []Pair[int]{{1, 11}, {11, 21}, {8, 18}}, pairs)

	// Each element of second is matched at most once.
	pairs = Intersect([]string{"x", "x", "y"}, []string{"x", "z", "x"},
		func(a, b string) bool { return a == b })
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair[string]{"x", "x"}, pairs[0])

	assert.Empty(t, Intersect([]int{1}, []int{2}, func(a, b int) bool { return a == b }))
}

func TestMap(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []float64{0.5, 1, 1.5}, Map(in, func(e int) float64 { return float64(e) / 2 }))
	assert.Empty(t, Map([]int{}, func(e int) int { return e }))
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0.0, 1.0, 3))
	assert.Equal(t, []float64{2}, Linspace(2.0, 5.0, 1))
	assert.Nil(t, Linspace(0.0, 1.0, 0))
}
