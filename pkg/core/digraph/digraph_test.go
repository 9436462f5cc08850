// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package digraph

import (
	"slices"
	"strconv"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var someNodes = []int{2, 4, 6, 8, 10, 100, -10, 42}

// requireEdgeSymmetry checks that for every node a and every b in Inputs(a), a is in Consumers(b),
// with the same multiplicity, and vice versa.
func requireEdgeSymmetry[T comparable](t *testing.T, g *Graph[T]) {
	t.Helper()
	count := func(list []T, e T) (n int) {
		for _, x := range list {
			if x == e {
				n++
			}
		}
		return
	}
	for _, id := range g.Nodes() {
		for _, input := range g.Inputs(id) {
			require.Truef(t, g.Has(input), "input %v of %v not in graph", input, id)
			require.Equalf(t, count(g.Inputs(id), input), count(g.Consumers(input), id),
				"edge %v -> %v not symmetric", input, id)
		}
		for _, consumer := range g.Consumers(id) {
			require.Truef(t, g.Has(consumer), "consumer %v of %v not in graph", consumer, id)
			require.Equalf(t, count(g.Consumers(id), consumer), count(g.Inputs(consumer), id),
				"edge %v -> %v not symmetric", id, consumer)
		}
	}
}

func allToAll(g *Graph[int]) {
	g.AddNodes(someNodes...)
	for _, source := range someNodes {
		for _, head := range someNodes {
			g.AddEdge(Edge[int]{Tail: head, Head: source})
		}
	}
}

func TestAddNode(t *testing.T) {
	g := New[int]()
	assert.True(t, g.IsEmpty())
	for _, n := range someNodes {
		assert.False(t, g.AddNode(n))
	}
	assert.True(t, g.AddNode(42))
	assert.Equal(t, len(someNodes), g.Len())
	assert.Equal(t, someNodes, g.Nodes())
	for _, n := range someNodes {
		assert.Empty(t, g.Inputs(n))
		assert.Empty(t, g.Consumers(n))
	}
}

func TestAddEdges(t *testing.T) {
	g := New[int]()
	g.AddNodes(1, 2, 3)
	g.AddEdges(Edge[int]{1, 2}, Edge[int]{1, 3}, Edge[int]{2, 3})
	assert.Equal(t, []int{1, 2}, g.Inputs(3))
	assert.Equal(t, []int{2, 3}, g.Consumers(1))
	assert.Equal(t, 3, g.NumEdges())
	requireEdgeSymmetry(t, g)

	// Edges are not de-duplicated.
	g.AddEdgeElements(1, 2)
	assert.Equal(t, []int{1, 1}, g.Inputs(2))
	assert.Equal(t, []int{2, 3, 2}, g.Consumers(1))
	requireEdgeSymmetry(t, g)

	// Edges require existing nodes.
	err := exceptions.TryCatch[error](func() { g.AddEdgeElements(1, 7) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.Empty(t, g.Consumers(1)[3:], "failed AddEdge must not change the graph")
}

func TestAddConnection(t *testing.T) {
	g := New[string]()
	g.AddConnection("x", "a")
	g.AddConnection("y", "a")
	g.AddConnection("x", "a")
	assert.Equal(t, []string{"x", "a", "y"}, g.Nodes())
	assert.Equal(t, []string{"x", "y", "x"}, g.Inputs("a"))
	assert.Equal(t, []string{"a", "a"}, g.Consumers("x"))
	requireEdgeSymmetry(t, g)
}

func TestMissingNodeAccess(t *testing.T) {
	g := New[int]()
	g.AddNode(1)
	for name, fn := range map[string]func(){
		"Inputs":        func() { _ = g.Inputs(2) },
		"Consumers":     func() { _ = g.Consumers(2) },
		"MergeElements": func() { g.MergeElements(1, 2) },
	} {
		err := exceptions.TryCatch[error](fn)
		require.Errorf(t, err, "%s should have panicked", name)
		assert.Truef(t, errors.Is(err, ErrNodeNotFound), "%s: unexpected error %v", name, err)
	}
}

func TestPrune(t *testing.T) {
	g := New[int]()
	allToAll(g)
	g.PruneMultiple(100, -10, 42)
	g.Prune(1000) // Not in graph: no-op.
	assert.Equal(t, []int{2, 4, 6, 8, 10}, g.Nodes())
	for _, n := range g.Nodes() {
		assert.Equal(t, []int{2, 4, 6, 8, 10}, g.Inputs(n))
		assert.Equal(t, []int{2, 4, 6, 8, 10}, g.Consumers(n))
	}
	requireEdgeSymmetry(t, g)
}

func TestPruneDuplicatedEdges(t *testing.T) {
	g := New[int]()
	g.AddConnection(1, 2)
	g.AddConnection(1, 2)
	g.AddConnection(2, 3)
	g.Prune(1)
	assert.Empty(t, g.Inputs(2))
	assert.Equal(t, []int{3}, g.Consumers(2))
	requireEdgeSymmetry(t, g)
}

func TestFlush(t *testing.T) {
	g := New[int]()
	allToAll(g)
	require.Same(t, g, g.Flush())
	assert.True(t, g.IsEmpty())
	assert.Empty(t, g.Nodes())

	// The graph can be reused after a flush: build a linked list.
	g.AddNodes(someNodes...)
	for ii, n := range someNodes {
		next := someNodes[(ii+1)%len(someNodes)]
		g.AddEdge(Edge[int]{Tail: next, Head: n})
	}
	assert.Equal(t, []int{4}, g.Inputs(2))
	assert.Equal(t, []int{42}, g.Consumers(2))
	requireEdgeSymmetry(t, g)
}

func TestMergeElementsOrder(t *testing.T) {
	g := New[int]()
	// kept=10 has inputs [1, 2] and consumers [20].
	g.AddConnection(1, 10)
	g.AddConnection(2, 10)
	g.AddConnection(10, 20)
	// merged=11 has inputs [3, 1] and consumers [21, 20].
	g.AddConnection(3, 11)
	g.AddConnection(1, 11)
	g.AddConnection(11, 21)
	g.AddConnection(11, 20)

	keptInputs := slices.Clone(g.Inputs(10))
	mergedInputs := slices.Clone(g.Inputs(11))
	keptConsumers := slices.Clone(g.Consumers(10))
	mergedConsumers := slices.Clone(g.Consumers(11))

	g.MergeElements(10, 11)
	assert.False(t, g.Has(11))
	assert.Equal(t, append(keptInputs, mergedInputs...), g.Inputs(10))
	assert.Equal(t, append(keptConsumers, mergedConsumers...), g.Consumers(10))
	assert.Equal(t, []int{10, 10}, g.Consumers(1))
	assert.Equal(t, []int{10, 10}, g.Inputs(20))
	requireEdgeSymmetry(t, g)

	// Self merge is a no-op.
	g.MergeElements(10, 10)
	assert.True(t, g.Has(10))
}

// TestAbsorbDisjoint: graph A has node 3 with 2 inputs and 1 consumer, graph B has node 4 with no inputs
// and 2 consumers. Associating (3, 4) yields a single node 3 with 2 inputs and 3 consumers.
func TestAbsorbDisjoint(t *testing.T) {
	a := New[int]()
	a.AddConnection(1, 3)
	a.AddConnection(2, 3)
	a.AddConnection(3, 5)
	b := New[int]()
	b.AddConnection(4, 6)
	b.AddConnection(4, 7)

	a.AbsorbDisjoint(b, []Pair[int]{{Kept: 3, Merged: 4}})
	assert.True(t, b.IsEmpty())
	assert.False(t, a.Has(4))
	assert.Equal(t, []int{1, 2}, a.Inputs(3))
	assert.Equal(t, []int{5, 6, 7}, a.Consumers(3))
	assert.Equal(t, []int{3}, a.Inputs(6))
	assert.Equal(t, []int{3}, a.Inputs(7))
	assert.Equal(t, []int{1, 3, 2, 5, 6, 7}, a.Nodes())
	requireEdgeSymmetry(t, a)
}

func TestAbsorbDisjointOverlapping(t *testing.T) {
	a := New[int]()
	a.AddConnection(1, 2)
	b := New[int]()
	b.AddConnection(2, 3)
	err := exceptions.TryCatch[error](func() { a.AbsorbDisjoint(b, nil) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlappingAbsorb))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, b.Len())
}

func TestAbsorb(t *testing.T) {
	// Both graphs share node 2.
	a := New[int]()
	a.AddConnection(1, 2)
	b := New[int]()
	b.AddConnection(2, 3)
	b.AddConnection(4, 3)

	a.Absorb(b)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, []int{1, 2, 3, 4}, a.Nodes())
	assert.Equal(t, []int{1}, a.Inputs(2))
	assert.Equal(t, []int{3}, a.Consumers(2))
	assert.Equal(t, []int{2, 4}, a.Inputs(3))
	requireEdgeSymmetry(t, a)

	// Disjoint graphs cannot be absorbed.
	c := New[int]()
	c.AddConnection(7, 8)
	err := exceptions.TryCatch[error](func() { a.Absorb(c) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDisjointAbsorb))
	assert.Equal(t, 2, c.Len())
}

func TestPrint(t *testing.T) {
	g := New[int]()
	g.AddConnection(1, 3)
	g.AddConnection(2, 3)
	format := func(n int) string { return "n" + strconv.Itoa(n) }
	want := "-- (n1) --> n3 \n" +
		"n1 n2 -- (n3) --> \n" +
		"-- (n2) --> n3 \n"
	assert.Equal(t, want, g.String(format))
}
