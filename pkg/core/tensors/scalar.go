// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements the storage cells holding the values of variables.
//
// Only scalars are implemented: a Scalar holds one float64, which may be absent before it is first written.
package tensors

import (
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/scalargrad/pkg/core/shapes"
)

// Storage is the contract of a value cell used by variables.
type Storage interface {
	// Value returns the stored value. It panics if no value was written yet.
	Value() float64

	// SetValue writes the value.
	SetValue(value float64)

	// IsSet returns whether a value was written.
	IsSet() bool

	// Shape of the stored value: empty for scalars.
	Shape() shapes.Shape
}

// Scalar is a Storage for a single float64 value.
type Scalar struct {
	value float64
	isSet bool
}

// Assert Scalar implements Storage.
var _ Storage = (*Scalar)(nil)

// NewScalar returns a Scalar holding value.
func NewScalar(value float64) *Scalar {
	return &Scalar{value: value, isSet: true}
}

// EmptyScalar returns a Scalar with no value yet.
func EmptyScalar() *Scalar {
	return &Scalar{}
}

// Value implements Storage.
func (s *Scalar) Value() float64 {
	if !s.isSet {
		exceptions.Panicf("tensors.Scalar.Value(): value read before being set")
	}
	return s.value
}

// SetValue implements Storage.
func (s *Scalar) SetValue(value float64) {
	s.value = value
	s.isSet = true
}

// IsSet implements Storage.
func (s *Scalar) IsSet() bool { return s.isSet }

// Shape implements Storage. It is always a scalar.
func (s *Scalar) Shape() shapes.Shape { return shapes.Scalar() }

// String implements fmt.Stringer. Unset values are printed as "<unset>".
func (s *Scalar) String() string {
	if !s.isSet {
		return "<unset>"
	}
	return strconv.FormatFloat(s.value, 'g', -1, 64)
}
