// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/gomlx/scalargrad/pkg/core/shapes"
	"github.com/gomlx/scalargrad/pkg/core/tensors"
)

// VarId is the identity of a Variable. Ids are unique within the process, so variables created by
// independently built graphs never collide, and graphs can be merged without renumbering.
type VarId int64

// InvalidVarId is never assigned to a Variable.
const InvalidVarId = VarId(0)

var lastVarId atomic.Int64

func newVarId() VarId {
	return VarId(lastVarId.Add(1))
}

// Variable is a vertex of the computation graph: it holds the value produced by its Operation.
//
// Leaves (see IsLeaf) are created with the Input operation and hold values assigned by the caller.
// All other variables are created by an Operation's Apply or ApplyWithGraph.
//
// The graphs only store the Variable's Id: the Variable itself is owned by an Arena (usually the one of
// the Graph where it was registered).
type Variable struct {
	id       VarId
	name     string
	op       Operation
	cell     tensors.Storage
	computed bool
}

// NewVariable creates a Variable produced by op, with the given storage cell.
// If cell is nil, an empty scalar cell is used.
func NewVariable(op Operation, name string, cell tensors.Storage) *Variable {
	if cell == nil {
		cell = tensors.EmptyScalar()
	}
	return &Variable{
		id:   newVarId(),
		name: name,
		op:   op,
		cell: cell,
	}
}

// NewLeaf creates a leaf Variable (with the Input operation) holding value.
func NewLeaf(name string, value float64) *Variable {
	return NewVariable(Input, name, tensors.NewScalar(value))
}

// Id returns the unique identity of the Variable.
func (v *Variable) Id() VarId { return v.id }

// Name of the Variable, it may be empty.
func (v *Variable) Name() string { return v.name }

// SetName sets the name of the Variable. Names are used by the builder to match leaves.
func (v *Variable) SetName(name string) { v.name = name }

// Operation that produced the Variable.
func (v *Variable) Operation() Operation { return v.op }

// IsLeaf returns whether the Variable was created with the Input operation.
func (v *Variable) IsLeaf() bool { return v.op.Type() == OpTypeInput }

// Storage returns the cell holding the value.
func (v *Variable) Storage() tensors.Storage { return v.cell }

// HasValue returns whether a value was already written to the Variable.
func (v *Variable) HasValue() bool { return v.cell.IsSet() }

// Value returns the current value. It panics if no value was written yet.
func (v *Variable) Value() float64 { return v.cell.Value() }

// SetValue writes the value. For leaves this is how inputs are fed to the graph.
// For other variables the value is overwritten by the next forward pass.
func (v *Variable) SetValue(value float64) {
	v.cell.SetValue(value)
	if !v.IsLeaf() {
		v.computed = false
	}
}

// Computed returns whether the value was last written by the Variable's Operation.
func (v *Variable) Computed() bool { return v.computed }

// Shape of the value: empty for scalars.
func (v *Variable) Shape() shapes.Shape { return v.cell.Shape() }

// IsScalar returns whether the value is a scalar.
func (v *Variable) IsScalar() bool { return v.Shape().IsScalar() }

// String implements fmt.Stringer: "name=value" for named variables, "value" for anonymous leaves
// and "Op#id=value" for other anonymous variables.
func (v *Variable) String() string {
	if v == nil {
		return "<nil>"
	}
	switch {
	case v.name != "":
		return fmt.Sprintf("%s=%s", v.name, v.cell)
	case v.IsLeaf():
		return fmt.Sprint(v.cell)
	default:
		return fmt.Sprintf("%s#%d=%s", v.op.Type(), v.id, v.cell)
	}
}
