// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/gomlx/scalargrad/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Gradient of an output with respect to a variable. Scalars have gradients of size 1.
type Gradient []float64

// Add returns the element-wise sum of the two gradients. It panics with ErrBadWalk if their sizes differ.
func (grad Gradient) Add(other Gradient) Gradient {
	if len(grad) != len(other) {
		panic(errors.Wrapf(ErrBadWalk, "adding gradients of sizes %d and %d", len(grad), len(other)))
	}
	sum := make(Gradient, len(grad))
	for ii := range grad {
		sum[ii] = grad[ii] + other[ii]
	}
	return sum
}

// GradientTable maps each variable to the gradient of the output with respect to it.
type GradientTable map[VarId]Gradient

// Of returns the gradient with respect to v, or nil if v is not in the table.
func (table GradientTable) Of(v *Variable) Gradient {
	return table[v.id]
}

// Has returns whether the table holds the gradient with respect to v.
func (table GradientTable) Has(v *Variable) bool {
	_, found := table[v.id]
	return found
}

// Len returns the number of variables in the table.
func (table GradientTable) Len() int { return len(table) }

// Print writes one line per variable, in the order they were created, with its gradient.
// g is used to look up the variables.
func (table GradientTable) Print(w io.Writer, g *Graph) error {
	for _, id := range slices.Sorted(maps.Keys(table)) {
		if _, err := fmt.Fprintf(w, "%s: %v\n", g.Variable(id), table[id]); err != nil {
			return errors.Wrap(err, "failed to print gradient table")
		}
	}
	return nil
}

// pathToOutput returns the ids of the variables output depends on (output included): the consumers
// of a variable in this set are the ones that lie on a path back to output.
//
// It panics with ErrCycle if the graph reachable from output is not acyclic.
func pathToOutput(g *Graph, output *Variable) sets.Set[VarId] {
	included := sets.MakeWith(output.id)
	onPath := sets.MakeWith(output.id)
	stack := []visitFrame{{v: output, inputs: g.Inputs(output)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.inputs) {
			onPath.Remove(top.v.id)
			stack = stack[:len(stack)-1]
			continue
		}
		input := top.inputs[top.next]
		top.next++
		if onPath.Has(input.id) {
			panic(errors.Wrapf(ErrCycle, "Backward(%s): %s depends on itself", output, input))
		}
		if !included.InsertNew(input.id) {
			continue
		}
		onPath.Insert(input.id)
		stack = append(stack, visitFrame{v: input, inputs: g.Inputs(input)})
	}
	return included
}

// accumulate adds contribution to the gradient of u in table, where n is the number of consumers of u
// leading to the output. visits holds the number of contributions received so far by the variables
// whose gradient is still incomplete.
//
// It returns whether the gradient of u is complete, that is, whether u should be visited. It panics
// with ErrBadWalk if u receives more contributions than n, which only happens if the graph edges are
// inconsistent.
func accumulate(table GradientTable, visits map[VarId]int, u *Variable, contribution Gradient, n int) bool {
	count, pending := visits[u.id]
	switch {
	case n == 1 && !pending:
		table[u.id] = contribution
		return true
	case n > 1 && !pending:
		table[u.id] = contribution
		visits[u.id] = 1
		return false
	case pending && count+1 < n:
		table[u.id] = table[u.id].Add(contribution)
		visits[u.id] = count + 1
		return false
	case pending && count+1 == n:
		table[u.id] = table[u.id].Add(contribution)
		delete(visits, u.id)
		return true
	default:
		panic(errors.Wrapf(ErrBadWalk, "%s received contribution %d, but it has %d consumer(s) leading to the output",
			u, count+1, n))
	}
}

// Backward computes the gradient of output with respect to every variable it depends on, and
// returns them in a GradientTable. The gradient of output with respect to itself is 1.
//
// The values of the variables must be up-to-date, see Forward.
//
// Variables are visited depth-first, in input order, as soon as their gradient is complete: that is,
// once every consumer lying on a path to output has contributed to it. Consumers that don't lead to
// output (dead branches) are not waited for.
//
// It panics with ErrNotAnOutput if output has consumers, with ErrCycle if the graph reachable from
// output is not acyclic, and with ErrBadWalk if the walk reaches an inconsistent state.
func Backward(g *Graph, output *Variable) GradientTable {
	checkOutput(g, output, "Backward")
	included := pathToOutput(g, output)
	numConsumers := func(u *Variable) (n int) {
		for _, consumer := range g.dag.Consumers(u.id) {
			if included.Has(consumer) {
				n++
			}
		}
		return
	}

	table := GradientTable{output.id: Gradient{1}}
	visits := make(map[VarId]int)
	stack := []visitFrame{{v: output, inputs: g.Inputs(output)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.inputs) {
			stack = stack[:len(stack)-1]
			continue
		}
		wrt := top.next
		top.next++
		u := top.inputs[wrt]
		contribution := top.v.op.LocalGradient(top.inputs, wrt, table[top.v.id])
		n := numConsumers(u)
		if klog.V(2).Enabled() {
			klog.Infof("Backward: %s -> %s (input #%d): %v, contribution %d of %d",
				top.v, u, wrt, contribution, visits[u.id]+1, n)
		}
		if accumulate(table, visits, u, contribution, n) {
			stack = append(stack, visitFrame{v: u, inputs: g.Inputs(u)})
		}
	}
	if len(visits) > 0 {
		panic(errors.Wrapf(ErrBadWalk, "Backward(%s): %d variable(s) still waiting for gradient contributions",
			output, len(visits)))
	}
	if klog.V(1).Enabled() {
		klog.Infof("Backward(%s): gradients of %d variable(s)", output, len(table))
	}
	return table
}
