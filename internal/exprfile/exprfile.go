// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package exprfile loads descriptions of scalar functions, as chains of builder.Unit operations, from YAML.
//
// Example, f(x) = exp(|log(5x+3)-5|^0.5) / 2:
//
//	name: singular
//	input: x
//	x: 1
//	steps:
//	  - {op: mul, value: 5, name: slope}
//	  - {op: add, value: 3}
//	  - {op: log}
//	  - {op: sub, value: 5}
//	  - {op: abs}
//	  - {op: pow, value: 0.5}
//	  - {op: exp}
//	  - {op: div, value: 2}
//
// Constants can be named, so their values can be changed after the Unit is built (see builder.Unit.Leaf).
//
// Besides the operations of package ops, a step can "combine" the chain with another one (with a binary
// operation given by "using"), or "join" it into another one:
//
//	steps:
//	  - op: combine
//	    using: div
//	    unit: {input: x, steps: [{op: sub, value: 5}, {op: pow, value: 2}]}
package exprfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/scalargrad/pkg/builder"
	"github.com/gomlx/scalargrad/pkg/core/graph"
	"github.com/gomlx/scalargrad/pkg/ops"
	"github.com/gomlx/scalargrad/pkg/support/fsutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Step kinds other than the operations.
const (
	StepCombine = "combine"
	StepJoin    = "join"
)

// Step is one operation applied to the output of a chain.
type Step struct {
	// Op is the name of an operation (see ops.ByName), or StepCombine or StepJoin.
	Op string `yaml:"op"`

	// Value is the constant operand of binary operations.
	Value *float64 `yaml:"value,omitempty"`

	// Name of the constant leaf of binary operations. If empty, a unique name is generated.
	Name string `yaml:"name,omitempty"`

	// Using is the binary operation of StepCombine.
	Using string `yaml:"using,omitempty"`

	// Unit is the other chain of StepCombine and StepJoin.
	Unit *Chain `yaml:"unit,omitempty"`
}

// Chain of steps applied to an input leaf.
type Chain struct {
	Input string `yaml:"input"`
	Steps []Step `yaml:"steps"`
}

// Expr is a named function, with a default value for its input.
type Expr struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	X           float64 `yaml:"x"`
	Chain       `yaml:",inline"`
}

// Parse decodes and validates an Expr from YAML.
func Parse(data []byte) (*Expr, error) {
	expr := &Expr{}
	if err := yaml.Unmarshal(data, expr); err != nil {
		return nil, errors.Wrap(err, "parsing expression")
	}
	if err := expr.Validate(); err != nil {
		return nil, err
	}
	return expr, nil
}

// Load reads and parses the Expr in the YAML file at path. A leading "~" in path is replaced by
// the user's home directory.
func Load(path string) (*Expr, error) {
	path, err := fsutil.ReplaceTilde(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading expression file %q", path)
	}
	expr, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "expression file %q", path)
	}
	if expr.Name == "" {
		expr.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return expr, nil
}

// Validate checks that every step is well-formed.
func (c *Chain) Validate() error {
	if c.Input == "" {
		return errors.New("chain has no input name")
	}
	for ii, step := range c.Steps {
		if err := step.validate(); err != nil {
			return errors.WithMessagef(err, "step #%d", ii)
		}
	}
	return nil
}

func (step *Step) validate() error {
	switch step.Op {
	case StepCombine:
		if step.Unit == nil {
			return errors.Errorf("%q requires a unit", step.Op)
		}
		op, err := ops.ByName(step.Using)
		if err != nil {
			return err
		}
		if !op.IsBinary() {
			return errors.Errorf("%q using %q: a binary operation is required", step.Op, step.Using)
		}
		return step.Unit.Validate()
	case StepJoin:
		if step.Unit == nil {
			return errors.Errorf("%q requires a unit", step.Op)
		}
		return step.Unit.Validate()
	}
	op, err := ops.ByName(step.Op)
	if err != nil {
		return err
	}
	if op.IsBinary() && step.Value == nil {
		return errors.Errorf("binary operation %q requires a value", step.Op)
	}
	if op.IsUnary() && (step.Value != nil || step.Name != "") {
		return errors.Errorf("unary operation %q takes no value", step.Op)
	}
	return nil
}

// Build creates a new builder.Unit for the chain. Each call creates an independent Unit.
// The chain must have been validated.
func (c *Chain) Build() (unit *builder.Unit, err error) {
	err = exceptions.TryCatch[error](func() { unit = c.build() })
	if err != nil {
		return nil, errors.WithMessagef(err, "building chain of %q", c.Input)
	}
	return unit, nil
}

func (c *Chain) build() *builder.Unit {
	unit := builder.New(c.Input, 0)
	for _, step := range c.Steps {
		switch step.Op {
		case StepCombine:
			unit.Combine(step.Unit.build(), mustOp(step.Using))
		case StepJoin:
			unit.Join(step.Unit.build())
		default:
			op := mustOp(step.Op)
			if op.IsBinary() && step.Name != "" {
				unit.NamedBinaryOp(step.Name, *step.Value, op)
			} else if op.IsBinary() {
				unit.BinaryOp(*step.Value, op)
			} else {
				unit.UnaryOp(op)
			}
		}
	}
	return unit
}

func mustOp(name string) graph.Operation {
	op, err := ops.ByName(name)
	if err != nil {
		panic(err)
	}
	return op
}
