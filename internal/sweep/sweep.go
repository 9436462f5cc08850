// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sweep evaluates a function and its derivative over a range of inputs, in parallel.
package sweep

import (
	"math"
	"strconv"
	"strings"

	"github.com/gomlx/scalargrad/internal/workerspool"
	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Sample of a function f at X.
type Sample struct {
	X, Value, Derivative float64
}

// IsFinite returns whether both the value and the derivative are finite.
func (s Sample) IsFinite() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0) &&
		!math.IsNaN(s.Derivative) && !math.IsInf(s.Derivative, 0)
}

// Range of Steps evenly spaced inputs, From and To included.
type Range struct {
	From, To float64
	Steps    int
}

// ParseRange parses a range in the format "from:to:steps".
func ParseRange(text string) (Range, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return Range{}, errors.Errorf("invalid range %q, expected format from:to:steps", text)
	}
	var (
		r   Range
		err error
	)
	if r.From, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return Range{}, errors.Wrapf(err, "invalid start of range %q", text)
	}
	if r.To, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return Range{}, errors.Wrapf(err, "invalid end of range %q", text)
	}
	if r.Steps, err = strconv.Atoi(parts[2]); err != nil {
		return Range{}, errors.Wrapf(err, "invalid number of steps in range %q", text)
	}
	if r.Steps < 1 {
		return Range{}, errors.Errorf("range %q must have at least 1 step", text)
	}
	return r, nil
}

// Points returns the inputs of the range.
func (r Range) Points() []float64 {
	return xslices.Linspace(r.From, r.To, r.Steps)
}

// BuildFn creates a new independent Unit of the function to evaluate.
type BuildFn func() (*builder.Unit, error)

// Run evaluates the function built by build, and its derivative, at each of the inputs xs, using the pool.
// Each worker of the pool builds its own Unit. If progress is not nil, it is called (concurrently)
// after each sample is evaluated.
func Run(pool *workerspool.Pool, build BuildFn, xs []float64, progress func()) ([]Sample, error) {
	samples := make([]Sample, len(xs))
	err := pool.Map(len(xs), func() (workerspool.Task, error) {
		unit, err := build()
		if err != nil {
			return nil, err
		}
		return func(index int) error {
			x := xs[index]
			samples[index] = Sample{X: x, Value: unit.Forward(x), Derivative: unit.Backward(x)}
			if progress != nil {
				progress()
			}
			return nil
		}, nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "sweep failed")
	}
	return samples, nil
}
