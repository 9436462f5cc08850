// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphtest holds test utilities for packages that depend on the graph package.
package graphtest

import (
	"testing"

	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

// TestGraphFn should build its own inputs (leaves) in g, and return both the inputs and the output.
type TestGraphFn func(g *graph.Graph) (inputs []*graph.Variable, output *graph.Variable)

// NumericStep is the step used by NumericGradient.
const NumericStep = 1e-6

// RunTestGraphFn builds the graph with graphFn, runs the forward pass and compares the output to want.
// Then it compares the gradients of the output with respect to each of the inputs to their
// numeric approximations.
//
// delta is the margin accepted for the output value and the gradients.
func RunTestGraphFn(t *testing.T, testName string, graphFn TestGraphFn, want float64, delta float64) {
	t.Run(testName, func(t *testing.T) {
		g := graph.New()
		inputs, output := graphFn(g)
		got := graph.Forward(g, output).Value()
		require.InDeltaf(t, want, got, delta, "%s: forward value", testName)
		grads := graph.Backward(g, output)
		for _, input := range inputs {
			require.Truef(t, grads.Has(input), "%s: no gradient with respect to %s", testName, input)
			numeric := NumericGradient(g, output, input)
			if klog.V(1).Enabled() {
				klog.Infof("%s: d/d%s: backward=%v, numeric=%g", testName, input, grads.Of(input), numeric)
			}
			require.InDeltaf(t, numeric, grads.Of(input)[0], delta,
				"%s: gradient with respect to %s", testName, input)
		}
	})
}

// NumericGradient approximates the derivative of output with respect to the leaf input using central
// differences. The value of input is restored, and the graph recomputed, before returning.
func NumericGradient(g *graph.Graph, output, input *graph.Variable) float64 {
	x := input.Value()
	defer func() {
		input.SetValue(x)
		graph.Forward(g, output)
	}()
	input.SetValue(x + NumericStep)
	plus := graph.Forward(g, output).Value()
	input.SetValue(x - NumericStep)
	minus := graph.Forward(g, output).Value()
	return (plus - minus) / (2 * NumericStep)
}
