// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import "golang.org/x/exp/constraints"

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Pair of elements matched by Intersect: First comes from the first slice, Second from the second.
type Pair[T any] struct {
	First, Second T
}

// Intersect returns the ordered intersection of first and second as pairs.
//
// For each element of first, in order, it pairs it with the first element of second for which
// `match(elementOfFirst, elementOfSecond)` is true and that was not yet paired. Elements of
// first with no match are skipped. It is O(len(first)*len(second)).
func Intersect[T any](first, second []T, match func(a, b T) bool) []Pair[T] {
	var pairs []Pair[T]
	used := make([]bool, len(second))
	for _, a := range first {
		for ii, b := range second {
			if used[ii] || !match(a, b) {
				continue
			}
			used[ii] = true
			pairs = append(pairs, Pair[T]{First: a, Second: b})
			break
		}
	}
	return pairs
}

// Linspace returns n values evenly spaced in [from, to]. For n == 1 it returns [from].
func Linspace[T constraints.Float](from, to T, n int) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / T(n-1)
	for ii := range out {
		out[ii] = from + T(ii)*step
	}
	out[n-1] = to
	return out
}
