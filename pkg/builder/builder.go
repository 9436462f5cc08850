// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package builder implements Unit, a fluent builder of single-input, single-output scalar functions.
//
// A Unit starts as its input leaf and grows by applying operations to its current output:
//
//	f := builder.New("x", 1).Mul(5).Add(3).Log()       // f(x) = log(5x+3)
//	value, derivative := f.Forward(2), f.Backward(2)
//
// Independently built units can be spliced together: Combine joins the outputs of two units sharing
// named leaves (e.g.: both have an input "x") with a binary operation, and Join composes them
// sequentially.
//
// Units panic on contract violations, like combining units with no leaves in common.
package builder

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/gomlx/scalargrad/pkg/ops"
	"github.com/gomlx/scalargrad/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrUnmatchedMerge is wrapped by the panic of Combine when the two units have no matching leaves.
var ErrUnmatchedMerge = errors.New("no matching leaves to merge units")

// MatchFn reports whether a leaf of the receiver unit (a) and a leaf of the other unit (b) represent
// the same input, and should be merged into one.
type MatchFn func(a, b *graph.Variable) bool

// MatchByName matches leaves with the same non-empty name.
func MatchByName(a, b *graph.Variable) bool {
	return a.Name() != "" && a.Name() == b.Name()
}

// paramCounter numbers the constant leaves created by the units, so their names are unique.
var paramCounter atomic.Int64

func nextParamName(op graph.Operation) string {
	return fmt.Sprintf("%s_param%d", strings.ToLower(op.Type().String()), paramCounter.Add(1)-1)
}

// Unit is a scalar function under construction: it owns a computation graph, with one designated input
// leaf, its current output, and the ordered list of its leaves (the input and the constants).
//
// Methods that grow the Unit return the Unit itself, so calls can be chained.
type Unit struct {
	g             *graph.Graph
	input, output *graph.Variable
	leaves        []*graph.Variable
}

// New creates a Unit f(x)=x, where x is a leaf with the given name and value.
func New(name string, value float64) *Unit {
	g := graph.New()
	x := g.Leaf(name, value)
	return &Unit{
		g:      g,
		input:  x,
		output: x,
		leaves: []*graph.Variable{x},
	}
}

func (u *Unit) checkValid(method string) {
	if u.g == nil || u.output == nil {
		exceptions.Panicf("Unit.%s: unit was already consumed by Combine or Join", method)
	}
}

// Graph returns the computation graph owned by the Unit.
func (u *Unit) Graph() *graph.Graph { return u.g }

// Input returns the designated input leaf.
func (u *Unit) Input() *graph.Variable { return u.input }

// Output returns the variable holding the result of the function.
func (u *Unit) Output() *graph.Variable { return u.output }

// Leaves returns the leaves of the Unit: its input first, followed by constants and the leaves of combined
// units, in the order they were added.
func (u *Unit) Leaves() []*graph.Variable { return u.leaves }

// Leaf returns the first leaf with the given name, or nil if there is none.
func (u *Unit) Leaf(name string) *graph.Variable {
	for _, leaf := range u.leaves {
		if leaf.Name() == name {
			return leaf
		}
	}
	return nil
}

// BinaryOp applies op to the current output and a new constant leaf holding value, in this order.
// The constant is named "<op>_param<N>", with N unique in the process.
func (u *Unit) BinaryOp(value float64, op graph.Operation) *Unit {
	return u.NamedBinaryOp(nextParamName(op), value, op)
}

// NamedBinaryOp is like BinaryOp, but the constant leaf is given a name.
// Leaves with the same name are merged by Combine.
func (u *Unit) NamedBinaryOp(name string, value float64, op graph.Operation) *Unit {
	u.checkValid("BinaryOp")
	param := u.g.Leaf(name, value)
	u.output = op.ApplyWithGraph(u.g, u.output, param)
	u.leaves = append(u.leaves, param)
	return u
}

// UnaryOp applies op to the current output.
func (u *Unit) UnaryOp(op graph.Operation) *Unit {
	u.checkValid("UnaryOp")
	u.output = op.ApplyWithGraph(u.g, u.output)
	return u
}

// Add returns f(x)+value.
func (u *Unit) Add(value float64) *Unit { return u.BinaryOp(value, ops.Add) }

// Sub returns f(x)-value.
func (u *Unit) Sub(value float64) *Unit { return u.BinaryOp(value, ops.Sub) }

// Mul returns f(x)*value.
func (u *Unit) Mul(value float64) *Unit { return u.BinaryOp(value, ops.Mul) }

// Div returns f(x)/value.
func (u *Unit) Div(value float64) *Unit { return u.BinaryOp(value, ops.Div) }

// Pow returns f(x)^exponent.
func (u *Unit) Pow(exponent float64) *Unit { return u.BinaryOp(exponent, ops.Pow) }

// Log returns log(f(x)).
func (u *Unit) Log() *Unit { return u.UnaryOp(ops.Log) }

// Abs returns |f(x)|.
func (u *Unit) Abs() *Unit { return u.UnaryOp(ops.Abs) }

// Exp returns exp(f(x)).
func (u *Unit) Exp() *Unit { return u.UnaryOp(ops.Exp) }

// Combine returns op(f(x), g(x)), where g is the other unit. Leaves of both units are matched by name.
// See CombineWith.
func (u *Unit) Combine(other *Unit, op graph.Operation) *Unit {
	return u.CombineWith(other, op, MatchByName)
}

// CombineWith returns op(f(x), g(x)), where g is the other unit.
//
// The leaves of the two units are matched with match: for each leaf of u, in order, the first leaf of other
// not yet matched. Each matched leaf of other is merged into its counterpart in u, and the other
// unit's graph is moved into u. The other unit is consumed and can't be used afterward.
//
// It panics with ErrUnmatchedMerge if no leaves match.
func (u *Unit) CombineWith(other *Unit, op graph.Operation, match MatchFn) *Unit {
	u.checkValid("Combine")
	other.checkValid("Combine")
	matches := xslices.Intersect(u.leaves, other.leaves, match)
	if len(matches) == 0 {
		panic(errors.Wrapf(ErrUnmatchedMerge, "Unit.Combine: leaves %v and %v", u.leaves, other.leaves))
	}
	pairs := make([]graph.Pair, 0, len(matches))
	replaced := make(map[graph.VarId]*graph.Variable, len(matches))
	for _, m := range matches {
		pairs = append(pairs, graph.Pair{Kept: m.First.Id(), Merged: m.Second.Id()})
		replaced[m.Second.Id()] = m.First
	}
	if klog.V(1).Enabled() {
		klog.Infof("Unit.Combine(%s): merging %d leaves", op.Type(), len(pairs))
	}
	otherOutput := other.output
	if kept, found := replaced[otherOutput.Id()]; found {
		otherOutput = kept
	}
	u.absorb(other, pairs, replaced)
	u.output = op.ApplyWithGraph(u.g, u.output, otherOutput)
	return u
}

// Join returns g(f(x)), where g is the other unit: the other unit's input is replaced by the current output.
// The other unit is consumed and can't be used afterward.
func (u *Unit) Join(other *Unit) *Unit {
	u.checkValid("Join")
	other.checkValid("Join")
	if klog.V(1).Enabled() {
		klog.Infof("Unit.Join: %s feeds %s", u.output, other.input)
	}
	newOutput := other.output
	if newOutput == other.input {
		newOutput = u.output
	}
	pairs := []graph.Pair{{Kept: u.output.Id(), Merged: other.input.Id()}}
	u.absorb(other, pairs, map[graph.VarId]*graph.Variable{other.input.Id(): u.output})
	u.output = newOutput
	return u
}

// absorb moves the graph and leaves of other into u, merging the pairs. replaced maps the merged away
// variables to the ones replacing them.
func (u *Unit) absorb(other *Unit, pairs []graph.Pair, replaced map[graph.VarId]*graph.Variable) {
	u.g.AbsorbDisjoint(other.g, pairs)
	for _, leaf := range other.leaves {
		if _, found := replaced[leaf.Id()]; !found {
			u.leaves = append(u.leaves, leaf)
		}
	}
	other.g, other.input, other.output, other.leaves = nil, nil, nil, nil
}

// Forward sets the input to x, and returns f(x).
func (u *Unit) Forward(x float64) float64 {
	u.checkValid("Forward")
	u.input.SetValue(x)
	return graph.Forward(u.g, u.output).Value()
}

// Gradients sets the input to x, and returns the gradients of f with respect to all the variables
// it depends on.
func (u *Unit) Gradients(x float64) graph.GradientTable {
	u.Forward(x)
	return graph.Backward(u.g, u.output)
}

// Backward sets the input to x, and returns f'(x).
func (u *Unit) Backward(x float64) float64 {
	grad := u.Gradients(x).Of(u.input)
	if len(grad) != 1 {
		exceptions.Panicf("Unit.Backward: output doesn't depend on the input %s", u.input)
	}
	return grad[0]
}

// Print writes the graph of the Unit, one line per variable.
func (u *Unit) Print(w io.Writer) error {
	u.checkValid("Print")
	return u.g.Print(w)
}

// String implements fmt.Stringer.
func (u *Unit) String() string {
	if u.g == nil {
		return "Unit(consumed)"
	}
	return fmt.Sprintf("Unit(%s -> %s, %d variables)", u.input, u.output, u.g.Len())
}
