// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/scalargrad/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// checkOutput panics if output is not a sink of g.
func checkOutput(g *Graph, output *Variable, method string) {
	if output == nil {
		panic(errors.Wrapf(ErrNotAnOutput, "%s: nil output", method))
	}
	if consumers := g.dag.Consumers(output.id); len(consumers) > 0 {
		panic(errors.Wrapf(ErrNotAnOutput, "%s(%s): output has %d consumer(s)", method, output, len(consumers)))
	}
}

// visitFrame is an entry of the explicit stacks used by the traversals: the variable being visited,
// its inputs and the position of the next input to process.
type visitFrame struct {
	v      *Variable
	inputs []*Variable
	next   int
}

// Forward recomputes, in post-order, the values of every variable output depends on, and returns output.
//
// Leaves are never recomputed: their values are the ones assigned by the caller. Each variable is
// updated once per call, after all its inputs are up-to-date.
//
// It panics with ErrNotAnOutput if output has consumers, and with ErrCycle if the graph reachable from
// output is not acyclic.
func Forward(g *Graph, output *Variable) *Variable {
	checkOutput(g, output, "Forward")
	if output.IsLeaf() {
		return output
	}
	settled := sets.Make[VarId]()
	onPath := sets.MakeWith(output.id)
	stack := []visitFrame{{v: output, inputs: g.Inputs(output)}}
	var numUpdates int
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.inputs) {
			input := top.inputs[top.next]
			top.next++
			if input.IsLeaf() || settled.Has(input.id) {
				continue
			}
			if onPath.Has(input.id) {
				panic(errors.Wrapf(ErrCycle, "Forward(%s): %s depends on itself", output, input))
			}
			onPath.Insert(input.id)
			stack = append(stack, visitFrame{v: input, inputs: g.Inputs(input)})
			continue
		}

		// All inputs are up-to-date.
		top.v.op.LocalUpdate(top.inputs, top.v)
		numUpdates++
		if klog.V(2).Enabled() {
			klog.Infof("Forward: updated %s", top.v)
		}
		settled.Insert(top.v.id)
		onPath.Remove(top.v.id)
		stack = stack[:len(stack)-1]
	}
	if klog.V(1).Enabled() {
		klog.Infof("Forward(%s): %d variable(s) updated", output, numUpdates)
	}
	return output
}
