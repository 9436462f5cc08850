// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the dimensions descriptor of the values held by variables.
//
// A Shape with no dimensions is a scalar, the only kind of value the operations currently accept.
// Shapes of higher rank can be represented, but no operation is defined for them.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// Shape is the dimensions of a value. The zero value is a scalar.
type Shape struct {
	Dimensions []int
}

// Scalar returns the shape of a scalar.
func Scalar() Shape {
	return Shape{}
}

// Make returns a shape with the given dimensions. It panics if any dimension is not positive.
func Make(dimensions ...int) Shape {
	for axis, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%v): axis #%d has dimension %d <= 0", dimensions, axis, dim)
		}
	}
	return Shape{Dimensions: slices.Clone(dimensions)}
}

// Rank of the shape, that is, its number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is, it has rank 0.
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// Size returns the number of elements of the shape: 1 for scalars.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Equal compares two shapes for equality of dimensions.
func (s Shape) Equal(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	if s.IsScalar() {
		return "()"
	}
	parts := make([]string, len(s.Dimensions))
	for ii, dim := range s.Dimensions {
		parts[ii] = fmt.Sprint(dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
