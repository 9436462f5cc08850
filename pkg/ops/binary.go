// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import "math"

type addFormula struct{}

func (addFormula) Forward(a, b float64) float64          { return a + b }
func (addFormula) Derivative(_, _ float64, _ int) float64 { return 1 }

type subFormula struct{}

func (subFormula) Forward(a, b float64) float64 { return a - b }

func (subFormula) Derivative(_, _ float64, wrt int) float64 {
	if wrt == 0 {
		return 1
	}
	return -1
}

type mulFormula struct{}

func (mulFormula) Forward(a, b float64) float64 { return a * b }

func (mulFormula) Derivative(a, b float64, wrt int) float64 {
	if wrt == 0 {
		return b
	}
	return a
}

type divFormula struct{}

func (divFormula) Forward(a, b float64) float64 { return a / b }

// Derivative: d(a/b)/da = 1/b and d(a/b)/db = -a/b².
func (divFormula) Derivative(a, b float64, wrt int) float64 {
	if wrt == 0 {
		return 1 / b
	}
	return -a / (b * b)
}

type powFormula struct{}

func (powFormula) Forward(base, exponent float64) float64 { return math.Pow(base, exponent) }

// Derivative: d(a^b)/da = b·a^(b-1) and d(a^b)/db = ln(a)·a^b.
// The latter is NaN for negative bases.
func (powFormula) Derivative(base, exponent float64, wrt int) float64 {
	if wrt == 0 {
		return exponent * math.Pow(base, exponent-1)
	}
	return math.Log(base) * math.Pow(base, exponent)
}
