// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFormula is exp(x), counting how many times it is evaluated.
type countingFormula struct {
	count int
}

func (f *countingFormula) Forward(x float64) float64 {
	f.count++
	return math.Exp(x)
}

func (f *countingFormula) Derivative(x float64) float64 { return math.Exp(x) }

func TestForwardSum(t *testing.T) {
	g := New()
	x := g.Leaf("x", 2)
	y := g.Leaf("y", 3)
	a := testAdd.ApplyWithGraph(g, x, y)
	a.SetValue(0)
	require.False(t, a.Computed())
	require.Same(t, a, Forward(g, a))
	assert.Equal(t, 5.0, a.Value())
	assert.True(t, a.Computed())
}

func TestForwardRecompute(t *testing.T) {
	g := New()
	x := g.Leaf("x", 2)
	a := g.Leaf("a", 3)
	b := g.Leaf("b", 4)
	y := testAdd.ApplyWithGraph(g, testAdd.ApplyWithGraph(g, testAdd.ApplyWithGraph(g, x, a), b), x)
	assert.Equal(t, 11.0, Forward(g, y).Value())

	a.SetValue(1)
	b.SetValue(2)
	assert.Equal(t, 11.0, y.Value(), "values are only updated by Forward")
	assert.Equal(t, 7.0, Forward(g, y).Value())

	// Leaves are never recomputed.
	assert.Equal(t, 2.0, x.Value())
	assert.Equal(t, 1.0, a.Value())
}

func TestForwardIdempotent(t *testing.T) {
	g := New()
	x := g.Leaf("x", 0.5)
	u := testExp.ApplyWithGraph(g, x)
	v := testMul.ApplyWithGraph(g, u, x)
	out := testSub.ApplyWithGraph(g, v, u)
	first := Forward(g, out).Value()
	second := Forward(g, out).Value()
	assert.Equal(t, first, second)
	assert.InDelta(t, math.Exp(0.5)*0.5-math.Exp(0.5), first, 1e-12)
}

func TestForwardDiamond(t *testing.T) {
	counter := &countingFormula{}
	countingExp := NewUnary(OpTypeLast, counter)

	g := New()
	x := g.Leaf("x", 1)
	u := countingExp.ApplyWithGraph(g, x)
	v := testMul.ApplyWithGraph(g, u, u)
	out := testAdd.ApplyWithGraph(g, u, v)
	require.Equal(t, 1, counter.count)

	x.SetValue(0)
	Forward(g, out)
	assert.Equal(t, 2, counter.count, "shared variables are updated once per pass")
	assert.Equal(t, 2.0, out.Value())
}

func TestForwardLeafOutput(t *testing.T) {
	g := New()
	x := g.Leaf("x", 7)
	assert.Same(t, x, Forward(g, x))
	assert.Equal(t, 7.0, x.Value())
}

func TestForwardErrors(t *testing.T) {
	g := New()
	x := g.Leaf("x", 1)
	y := g.Leaf("y", 2)
	a := testAdd.ApplyWithGraph(g, x, y)
	b := testExp.ApplyWithGraph(g, a)
	out := testExp.ApplyWithGraph(g, b)

	requirePanicsWith(t, ErrNotAnOutput, func() { Forward(g, a) })
	requirePanicsWith(t, ErrNotAnOutput, func() { Forward(g, nil) })

	// Close a cycle a -> b -> a.
	g.DAG().AddEdgeElements(b.Id(), a.Id())
	requirePanicsWith(t, ErrCycle, func() { Forward(g, out) })
}
