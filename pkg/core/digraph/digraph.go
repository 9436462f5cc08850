// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package digraph implements a generic directed graph, keyed by an opaque comparable node identity.
//
// Each node stores an ordered list of its inputs (direct predecessors) and an ordered list of its
// consumers (direct successors). Adding an edge (tail, head) appends head to the consumers of tail and
// tail to the inputs of head, so the two views are always consistent. The order of the lists is
// preserved by every mutation, since it is semantically meaningful for non-commutative operations.
//
// Besides the usual node and edge mutations, the graph supports merging nodes (MergeElements) and
// merging whole graphs, either when they share node identities (Absorb) or when they are disjoint
// and specific pairs of nodes should be unified (AbsorbDisjoint).
//
// # Error Handling
//
// Querying a node that is not in the graph is a contract violation and panics with an error
// wrapping ErrNodeNotFound. Removing absent nodes is silently ignored.
package digraph

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNodeNotFound is wrapped by the panics raised when accessing a node not in the graph.
	ErrNodeNotFound = errors.New("node not found in graph")

	// ErrDisjointAbsorb is raised by Absorb when the two graphs share no node.
	ErrDisjointAbsorb = errors.New("absorb of disjoint graphs, use AbsorbDisjoint")

	// ErrOverlappingAbsorb is raised by AbsorbDisjoint when the two graphs share nodes.
	ErrOverlappingAbsorb = errors.New("absorb-disjoint of graphs with common nodes, use Absorb")
)

// Edge connects Tail ---> Head.
type Edge[T comparable] struct {
	Tail, Head T
}

// Pair associates two nodes to be unified by AbsorbDisjoint: Merged is folded into Kept.
type Pair[T comparable] struct {
	Kept, Merged T
}

// node entry in the graph.
type node[T comparable] struct {
	inputs    []T
	consumers []T
}

// Graph is a directed graph of nodes identified by T.
//
// The zero value is not usable, create it with New.
type Graph[T comparable] struct {
	nodes map[T]*node[T]

	// order of insertion of the nodes, used to iterate deterministically.
	order []T
}

// New creates an empty Graph.
func New[T comparable]() *Graph[T] {
	return &Graph[T]{nodes: make(map[T]*node[T])}
}

// Len returns the number of nodes in the graph.
func (g *Graph[T]) Len() int { return len(g.nodes) }

// IsEmpty returns whether the graph has no nodes.
func (g *Graph[T]) IsEmpty() bool { return len(g.nodes) == 0 }

// NumEdges returns the number of edges in the graph, counting duplicates.
func (g *Graph[T]) NumEdges() (count int) {
	for _, n := range g.nodes {
		count += len(n.consumers)
	}
	return
}

// Has returns whether id is a node of the graph.
func (g *Graph[T]) Has(id T) bool {
	_, found := g.nodes[id]
	return found
}

// Nodes returns the nodes in insertion order. The returned slice is owned by the caller.
func (g *Graph[T]) Nodes() []T {
	return slices.Clone(g.order)
}

func (g *Graph[T]) mustGet(method string, id T) *node[T] {
	n, found := g.nodes[id]
	if !found {
		panic(errors.Wrapf(ErrNodeNotFound, "digraph.%s(%v)", method, id))
	}
	return n
}

// AddNode adds a new node, and returns true if the node already existed, in which case nothing changes.
func (g *Graph[T]) AddNode(id T) (existed bool) {
	if _, found := g.nodes[id]; found {
		return true
	}
	g.nodes[id] = &node[T]{}
	g.order = append(g.order, id)
	return false
}

// AddNodes adds each of the ids as a node. Existing ones are left untouched.
func (g *Graph[T]) AddNodes(ids ...T) {
	for _, id := range ids {
		g.AddNode(id)
	}
}

// AddEdge adds the edge.Tail ---> edge.Head. Both nodes must already exist.
// Edges are not de-duplicated: adding the same edge twice duplicates it on both sides.
func (g *Graph[T]) AddEdge(edge Edge[T]) {
	tail := g.mustGet("AddEdge", edge.Tail)
	head := g.mustGet("AddEdge", edge.Head)
	tail.consumers = append(tail.consumers, edge.Head)
	head.inputs = append(head.inputs, edge.Tail)
}

// AddEdges adds each of the edges, in order.
func (g *Graph[T]) AddEdges(edges ...Edge[T]) {
	for _, edge := range edges {
		g.AddEdge(edge)
	}
}

// AddEdgeElements adds the edge tail ---> head.
func (g *Graph[T]) AddEdgeElements(tail, head T) {
	g.AddEdge(Edge[T]{Tail: tail, Head: head})
}

// AddConnection adds both nodes if they don't exist yet and then the edge from ---> to.
func (g *Graph[T]) AddConnection(from, to T) {
	g.AddNode(from)
	g.AddNode(to)
	g.AddEdgeElements(from, to)
}

// Inputs returns the ordered inputs (direct predecessors) of id.
// The returned slice must not be modified. It panics if id is not in the graph.
func (g *Graph[T]) Inputs(id T) []T {
	return g.mustGet("Inputs", id).inputs
}

// Consumers returns the ordered consumers (direct successors) of id.
// The returned slice must not be modified. It panics if id is not in the graph.
func (g *Graph[T]) Consumers(id T) []T {
	return g.mustGet("Consumers", id).consumers
}

// removeFrom removes the first occurrence of element from list.
func removeFrom[T comparable](list []T, element T) []T {
	if idx := slices.Index(list, element); idx >= 0 {
		return slices.Delete(list, idx, idx+1)
	}
	return list
}

// Prune removes the node and strips it from the inputs and consumers of every other node.
// Pruning a node not in the graph is a no-op.
func (g *Graph[T]) Prune(id T) {
	if _, found := g.nodes[id]; !found {
		return
	}
	delete(g.nodes, id)
	g.order = removeFrom(g.order, id)
	for _, n := range g.nodes {
		n.inputs = slices.DeleteFunc(n.inputs, func(e T) bool { return e == id })
		n.consumers = slices.DeleteFunc(n.consumers, func(e T) bool { return e == id })
	}
}

// PruneMultiple prunes each of the ids.
func (g *Graph[T]) PruneMultiple(ids ...T) {
	for _, id := range ids {
		g.Prune(id)
	}
}

// Flush removes all nodes and edges, and returns the graph itself for chaining.
func (g *Graph[T]) Flush() *Graph[T] {
	clear(g.nodes)
	g.order = g.order[:0]
	return g
}

// MergeElements reroutes every edge touching merged so it touches kept instead, and then removes merged.
//
// The inputs of kept become its previous inputs followed by the inputs of merged, in their original
// order, and likewise for the consumers. Merging a node with itself is a no-op.
func (g *Graph[T]) MergeElements(kept, merged T) {
	keptNode := g.mustGet("MergeElements", kept)
	mergedNode := g.mustGet("MergeElements", merged)
	if kept == merged {
		return
	}
	for _, input := range mergedNode.inputs {
		inputNode := g.mustGet("MergeElements", input)
		replaceAll(inputNode.consumers, merged, kept)
		keptNode.inputs = append(keptNode.inputs, input)
	}
	for _, consumer := range mergedNode.consumers {
		consumerNode := g.mustGet("MergeElements", consumer)
		replaceAll(consumerNode.inputs, merged, kept)
		keptNode.consumers = append(keptNode.consumers, consumer)
	}
	delete(g.nodes, merged)
	g.order = removeFrom(g.order, merged)
}

func replaceAll[T comparable](list []T, old, new T) {
	for ii, e := range list {
		if e == old {
			list[ii] = new
		}
	}
}

// Absorb moves all nodes of other into g, assuming the two graphs share some node identities.
//
// Nodes only in other are moved as they are. For nodes present in both, the inputs and consumers of
// other's entry are appended to g's entry. It panics with ErrDisjointAbsorb if the graphs share no
// node, in which case neither graph is changed. Otherwise, other is left empty.
func (g *Graph[T]) Absorb(other *Graph[T]) {
	if !g.overlaps(other) {
		panic(errors.Wrapf(ErrDisjointAbsorb, "digraph.Absorb: %d and %d nodes", g.Len(), other.Len()))
	}
	for _, id := range other.order {
		otherNode := other.nodes[id]
		if n, found := g.nodes[id]; found {
			n.inputs = append(n.inputs, otherNode.inputs...)
			n.consumers = append(n.consumers, otherNode.consumers...)
			continue
		}
		g.nodes[id] = otherNode
		g.order = append(g.order, id)
	}
	other.Flush()
}

// AbsorbDisjoint moves all nodes of other into g, and then unifies each of the associations with
// MergeElements(pair.Kept, pair.Merged).
//
// The graphs must not share any node, otherwise it panics with ErrOverlappingAbsorb before changing
// anything. The other graph is left empty.
func (g *Graph[T]) AbsorbDisjoint(other *Graph[T], associations []Pair[T]) {
	if g.overlaps(other) {
		panic(errors.Wrapf(ErrOverlappingAbsorb, "digraph.AbsorbDisjoint: %d and %d nodes", g.Len(), other.Len()))
	}
	for _, id := range other.order {
		g.nodes[id] = other.nodes[id]
		g.order = append(g.order, id)
	}
	other.Flush()
	for _, pair := range associations {
		g.MergeElements(pair.Kept, pair.Merged)
	}
}

func (g *Graph[T]) overlaps(other *Graph[T]) bool {
	small, large := g, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for id := range small.nodes {
		if large.Has(id) {
			return true
		}
	}
	return false
}

// Print writes one line per node, in insertion order, in the form
// "<inputs> -- (<node>) --> <consumers>", using format to render each node.
func (g *Graph[T]) Print(w io.Writer, format func(T) string) error {
	for _, id := range g.order {
		n := g.nodes[id]
		var sb strings.Builder
		for _, input := range n.inputs {
			sb.WriteString(format(input))
			sb.WriteByte(' ')
		}
		sb.WriteString("-- (")
		sb.WriteString(format(id))
		sb.WriteString(") --> ")
		for _, consumer := range n.consumers {
			sb.WriteString(format(consumer))
			sb.WriteByte(' ')
		}
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return errors.Wrap(err, "digraph.Print")
		}
	}
	return nil
}

// String renders the graph as Print does.
func (g *Graph[T]) String(format func(T) string) string {
	var sb strings.Builder
	_ = g.Print(&sb, format)
	return sb.String()
}
