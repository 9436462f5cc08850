// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph is the core package of scalargrad: it implements computation graphs of scalar
// variables, and their forward and reverse-mode (backward) evaluation.
//
// The main elements in the package are:
//
//   - Variable is a vertex of the computation: it holds a value and the Operation that produced it.
//     Leaves hold values assigned by the caller (see NewLeaf).
//
//   - Operation is the contract of the formulas that produce variables: how to compute a value
//     (Apply and LocalUpdate) and how to propagate gradients to its inputs (LocalGradient).
//     The concrete operations live in package ops.
//
//   - Graph bundles the directed graph of variable ids (see package digraph) with the Arena that
//     owns the variables.
//
//   - Forward recomputes the variables of a graph leading to an output, and Backward computes the
//     gradient of an output with respect to every variable it depends on.
//
// # Error Handling
//
// Graph, Variable and Operation methods "throw" errors with panic(): a missing variable, a cycle or
// an operation called with the wrong number of inputs are contract violations of the caller.
// Panics are raised with errors wrapping one of the package's sentinel errors (ErrInvalidOperation,
// ErrBadWalk, ErrCycle, ...), so they can be caught with exceptions.TryCatch and checked with errors.Is.
package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomlx/scalargrad/pkg/core/digraph"
	"github.com/gomlx/scalargrad/pkg/support/sets"
	"github.com/gomlx/scalargrad/pkg/support/xslices"
)

// Pair associates two variables to be unified by AbsorbDisjoint: Merged is replaced by Kept.
type Pair = digraph.Pair[VarId]

// Graph is a computation graph: edges go from each input of a variable to the variable.
//
// The zero value is not usable, create it with New.
type Graph struct {
	dag   *digraph.Graph[VarId]
	arena *Arena
}

// New returns an empty computation graph.
func New() *Graph {
	return &Graph{
		dag:   digraph.New[VarId](),
		arena: NewArena(),
	}
}

// DAG returns the underlying directed graph of variable ids.
func (g *Graph) DAG() *digraph.Graph[VarId] { return g.dag }

// Arena returns the arena owning the variables of the graph.
func (g *Graph) Arena() *Arena { return g.arena }

// Len returns the number of variables in the graph.
func (g *Graph) Len() int { return g.dag.Len() }

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int { return g.dag.NumEdges() }

// Register adds v to the graph (with no edges) and takes ownership of it.
// It is a no-op if v is already in the graph.
func (g *Graph) Register(v *Variable) {
	g.arena.Add(v)
	g.dag.AddNode(v.id)
}

// Has returns whether v is part of the graph.
func (g *Graph) Has(v *Variable) bool {
	return v != nil && g.dag.Has(v.id)
}

// Leaf creates and registers a new leaf variable.
func (g *Graph) Leaf(name string, value float64) *Variable {
	v := NewLeaf(name, value)
	g.Register(v)
	return v
}

// Constant creates and registers a new anonymous leaf variable.
func (g *Graph) Constant(value float64) *Variable {
	return g.Leaf("", value)
}

// Variable returns the variable with the given id. It panics if it is not owned by the graph.
func (g *Graph) Variable(id VarId) *Variable {
	return g.arena.Get(id)
}

func (g *Graph) variables(ids []VarId) []*Variable {
	return xslices.Map(ids, g.arena.Get)
}

// Inputs returns the inputs of v, in operand order.
func (g *Graph) Inputs(v *Variable) []*Variable {
	return g.variables(g.dag.Inputs(v.id))
}

// Consumers returns the variables that take v as an input, in the order they were connected.
// A variable that uses v more than once is listed once per use.
func (g *Graph) Consumers(v *Variable) []*Variable {
	return g.variables(g.dag.Consumers(v.id))
}

// Leaves returns the leaf variables of the graph, in the order they were registered.
func (g *Graph) Leaves() []*Variable {
	var leaves []*Variable
	for _, id := range g.dag.Nodes() {
		if v := g.arena.Get(id); v.IsLeaf() {
			leaves = append(leaves, v)
		}
	}
	return leaves
}

// connect registers result, and the inputs not yet in the graph, with edges from each of the inputs,
// in order, to result.
func (g *Graph) connect(inputs []*Variable, result *Variable) {
	for _, input := range inputs {
		g.arena.Add(input)
	}
	g.Register(result)
	for _, input := range inputs {
		g.dag.AddConnection(input.id, result.id)
	}
}

// Absorb merges other, which must share at least one variable with g, into g.
// other is left empty.
func (g *Graph) Absorb(other *Graph) {
	g.dag.Absorb(other.dag)
	g.arena.Adopt(other.arena, nil)
}

// AbsorbDisjoint merges other, which must share no variable with g, into g, and then merges the
// variables of each pair: the Merged variables are replaced by the Kept ones and dropped.
// other is left empty.
func (g *Graph) AbsorbDisjoint(other *Graph, pairs []Pair) {
	g.dag.AbsorbDisjoint(other.dag, pairs)
	merged := sets.Make[VarId](len(pairs))
	for _, pair := range pairs {
		if pair.Kept != pair.Merged {
			merged.Insert(pair.Merged)
		}
	}
	g.arena.Adopt(other.arena, merged)
}

// Prune removes the variables from the graph, and releases them from the arena.
func (g *Graph) Prune(vars ...*Variable) {
	ids := xslices.Map(vars, (*Variable).Id)
	g.dag.PruneMultiple(ids...)
	g.arena.Release(ids...)
}

// Print writes one line per variable, with its inputs and consumers.
func (g *Graph) Print(w io.Writer) error {
	return g.dag.Print(w, func(id VarId) string {
		return g.arena.Get(id).String()
	})
}

// String implements fmt.Stringer.
func (g *Graph) String() string {
	var sb strings.Builder
	if err := g.Print(&sb); err != nil {
		return fmt.Sprintf("Graph: failed to print: %v", err)
	}
	return sb.String()
}
