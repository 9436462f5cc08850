// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"strconv"

	"github.com/gomlx/scalargrad/pkg/core/tensors"
	"github.com/pkg/errors"
)

// OpType identifies the kind of an Operation.
type OpType int

const (
	OpTypeInvalid OpType = iota
	OpTypeInput
	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeDiv
	OpTypePow
	OpTypeExp
	OpTypeLog
	OpTypeAbs

	// OpTypeLast is the first value not used by the built-in operations: custom operations
	// should use values from here on.
	OpTypeLast
)

var opTypeNames = [...]string{
	OpTypeInvalid: "Invalid",
	OpTypeInput:   "Input",
	OpTypeAdd:     "Add",
	OpTypeSub:     "Sub",
	OpTypeMul:     "Mul",
	OpTypeDiv:     "Div",
	OpTypePow:     "Pow",
	OpTypeExp:     "Exp",
	OpTypeLog:     "Log",
	OpTypeAbs:     "Abs",
}

// String implements fmt.Stringer.
func (t OpType) String() string {
	if t >= 0 && int(t) < len(opTypeNames) {
		return opTypeNames[t]
	}
	return "OpType(" + strconv.Itoa(int(t)) + ")"
}

// Operation is the contract implemented by every operation that produces a Variable.
//
// Operations are stateless and shared by all the variables they produce: they are created once, usually as
// package level values (see package ops), and compared by identity.
//
// An Operation is either unary (one input) or binary (two inputs). The position of the inputs matters
// for non-commutative operations (e.g.: Sub, Div, Pow).
//
// Calling an Operation with the wrong number of inputs panics with an error wrapping ErrInvalidOperation.
type Operation interface {
	// Type of the operation.
	Type() OpType

	// IsUnary returns whether the operation takes exactly one input.
	IsUnary() bool

	// IsBinary returns whether the operation takes exactly two inputs.
	IsBinary() bool

	// Apply creates a new Variable holding the result of the operation on the inputs' values.
	// The new Variable is not registered in any graph.
	Apply(inputs ...*Variable) *Variable

	// ApplyWithGraph is like Apply, but it also registers the result in g, with edges from each of the inputs
	// (in order) to the result. Inputs not yet in g are registered as well.
	ApplyWithGraph(g *Graph, inputs ...*Variable) *Variable

	// LocalUpdate recomputes target's value from the current values of its inputs.
	LocalUpdate(inputs []*Variable, target *Variable)

	// LocalGradient returns the gradient contributed to the input at position wrt, given all inputs of a
	// variable produced by this operation and the (upstream) gradient of that variable.
	LocalGradient(inputs []*Variable, wrt int, upstream Gradient) Gradient
}

// UnaryFormula defines a scalar unary operation y = f(x).
type UnaryFormula interface {
	// Forward returns f(x).
	Forward(x float64) float64

	// Derivative returns df/dx at x.
	Derivative(x float64) float64
}

// BinaryFormula defines a scalar binary operation y = f(a, b).
type BinaryFormula interface {
	// Forward returns f(a, b).
	Forward(a, b float64) float64

	// Derivative returns the partial derivative of f with respect to a (wrt == 0) or b (wrt == 1).
	Derivative(a, b float64, wrt int) float64
}

// NewUnary returns the Operation for a unary formula.
func NewUnary(opType OpType, formula UnaryFormula) Operation {
	return &unaryOp{opType: opType, formula: formula}
}

// NewBinary returns the Operation for a binary formula.
func NewBinary(opType OpType, formula BinaryFormula) Operation {
	return &binaryOp{opType: opType, formula: formula}
}

func invalidOperationf(format string, args ...any) {
	panic(errors.Wrapf(ErrInvalidOperation, format, args...))
}

func checkNumInputs(op Operation, method string, inputs []*Variable, want int) {
	if len(inputs) != want {
		invalidOperationf("%s.%s: takes %d input(s), %d given", op.Type(), method, want, len(inputs))
	}
	for ii, input := range inputs {
		if input == nil {
			invalidOperationf("%s.%s: input #%d is nil", op.Type(), method, ii)
		}
		if !input.IsScalar() {
			invalidOperationf("%s.%s: input #%d has shape %s, only scalars are supported",
				op.Type(), method, ii, input.Shape())
		}
	}
}

func checkGradientArgs(op Operation, inputs []*Variable, wrt int, upstream Gradient, numInputs int) {
	checkNumInputs(op, "LocalGradient", inputs, numInputs)
	if wrt < 0 || wrt >= numInputs {
		invalidOperationf("%s.LocalGradient: input position %d out of range for %d input(s)", op.Type(), wrt, numInputs)
	}
	if len(upstream) != 1 {
		invalidOperationf("%s.LocalGradient: scalar operations take gradients of size 1, got size %d",
			op.Type(), len(upstream))
	}
}

// newResult creates the variable holding a freshly computed value.
func newResult(op Operation, value float64) *Variable {
	v := NewVariable(op, "", tensors.NewScalar(value))
	v.computed = true
	return v
}

// setResult writes a freshly computed value into target.
func setResult(target *Variable, value float64) {
	target.cell.SetValue(value)
	target.computed = true
}

// unaryOp implements Operation for a UnaryFormula.
type unaryOp struct {
	opType  OpType
	formula UnaryFormula
}

func (op *unaryOp) Type() OpType   { return op.opType }
func (op *unaryOp) IsUnary() bool  { return true }
func (op *unaryOp) IsBinary() bool { return false }

func (op *unaryOp) Apply(inputs ...*Variable) *Variable {
	checkNumInputs(op, "Apply", inputs, 1)
	return newResult(op, op.formula.Forward(inputs[0].Value()))
}

func (op *unaryOp) ApplyWithGraph(g *Graph, inputs ...*Variable) *Variable {
	result := op.Apply(inputs...)
	g.connect(inputs, result)
	return result
}

func (op *unaryOp) LocalUpdate(inputs []*Variable, target *Variable) {
	checkNumInputs(op, "LocalUpdate", inputs, 1)
	setResult(target, op.formula.Forward(inputs[0].Value()))
}

func (op *unaryOp) LocalGradient(inputs []*Variable, wrt int, upstream Gradient) Gradient {
	checkGradientArgs(op, inputs, wrt, upstream, 1)
	return Gradient{op.formula.Derivative(inputs[0].Value()) * upstream[0]}
}

// binaryOp implements Operation for a BinaryFormula.
type binaryOp struct {
	opType  OpType
	formula BinaryFormula
}

func (op *binaryOp) Type() OpType   { return op.opType }
func (op *binaryOp) IsUnary() bool  { return false }
func (op *binaryOp) IsBinary() bool { return true }

func (op *binaryOp) Apply(inputs ...*Variable) *Variable {
	checkNumInputs(op, "Apply", inputs, 2)
	return newResult(op, op.formula.Forward(inputs[0].Value(), inputs[1].Value()))
}

func (op *binaryOp) ApplyWithGraph(g *Graph, inputs ...*Variable) *Variable {
	result := op.Apply(inputs...)
	g.connect(inputs, result)
	return result
}

func (op *binaryOp) LocalUpdate(inputs []*Variable, target *Variable) {
	checkNumInputs(op, "LocalUpdate", inputs, 2)
	setResult(target, op.formula.Forward(inputs[0].Value(), inputs[1].Value()))
}

func (op *binaryOp) LocalGradient(inputs []*Variable, wrt int, upstream Gradient) Gradient {
	checkGradientArgs(op, inputs, wrt, upstream, 2)
	a, b := inputs[0].Value(), inputs[1].Value()
	return Gradient{op.formula.Derivative(a, b, wrt) * upstream[0]}
}

// inputOp is the distinguished operation of leaves: their values are assigned by the caller, so it
// has no formula and every method of the contract, other than its classification, panics.
type inputOp struct{}

// Input is the Operation of leaf variables. See NewLeaf and Graph.Leaf.
var Input Operation = inputOp{}

func (inputOp) Type() OpType   { return OpTypeInput }
func (inputOp) IsUnary() bool  { return false }
func (inputOp) IsBinary() bool { return false }

func (inputOp) Apply(...*Variable) *Variable {
	invalidOperationf("Input.Apply: leaves are created with NewLeaf or Graph.Leaf")
	return nil
}

func (inputOp) ApplyWithGraph(*Graph, ...*Variable) *Variable {
	invalidOperationf("Input.ApplyWithGraph: leaves are created with NewLeaf or Graph.Leaf")
	return nil
}

func (inputOp) LocalUpdate([]*Variable, *Variable) {
	invalidOperationf("Input.LocalUpdate: leaves are never recomputed")
}

func (inputOp) LocalGradient([]*Variable, int, Gradient) Gradient {
	invalidOperationf("Input.LocalGradient: leaves have no inputs to propagate gradients to")
	return nil
}
