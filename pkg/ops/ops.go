// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops implements the scalar operations used to build computation graphs.
//
// Each operation is a package level graph.Operation, shared by all the variables it produces:
//
//	g := graph.New()
//	x := g.Leaf("x", 2)
//	y := ops.Mul.ApplyWithGraph(g, x, ops.Exp.ApplyWithGraph(g, x))
//
// Binary operations take their operands in order: Sub computes a-b, Div computes a/b and Pow computes
// base^exponent.
package ops

import (
	"strings"

	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/pkg/errors"
)

var (
	// Add returns a+b.
	Add = graph.NewBinary(graph.OpTypeAdd, addFormula{})

	// Sub returns a-b.
	Sub = graph.NewBinary(graph.OpTypeSub, subFormula{})

	// Mul returns a*b.
	Mul = graph.NewBinary(graph.OpTypeMul, mulFormula{})

	// Div returns a/b.
	Div = graph.NewBinary(graph.OpTypeDiv, divFormula{})

	// Pow returns base^exponent.
	Pow = graph.NewBinary(graph.OpTypePow, powFormula{})

	// Exp returns e^x.
	Exp = graph.NewUnary(graph.OpTypeExp, expFormula{})

	// Log returns the natural logarithm of x.
	Log = graph.NewUnary(graph.OpTypeLog, logFormula{})

	// Abs returns |x|. Its derivative at 0 is taken to be 1.
	Abs = graph.NewUnary(graph.OpTypeAbs, absFormula{})
)

// All lists the operations of the package.
var All = []graph.Operation{Add, Sub, Mul, Div, Pow, Exp, Log, Abs}

// ErrUnknownOperation is returned by ByName for names that don't match any operation.
var ErrUnknownOperation = errors.New("unknown operation")

// ByName returns the operation whose type has the given name, case-insensitive (e.g.: "add", "Pow").
func ByName(name string) (graph.Operation, error) {
	for _, op := range All {
		if strings.EqualFold(op.Type().String(), name) {
			return op, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownOperation, "ops.ByName(%q)", name)
}
