// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import "math"

type expFormula struct{}

func (expFormula) Forward(x float64) float64    { return math.Exp(x) }
func (expFormula) Derivative(x float64) float64 { return math.Exp(x) }

type logFormula struct{}

func (logFormula) Forward(x float64) float64    { return math.Log(x) }
func (logFormula) Derivative(x float64) float64 { return 1 / x }

type absFormula struct{}

func (absFormula) Forward(x float64) float64 { return math.Abs(x) }

func (absFormula) Derivative(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return -1
}
