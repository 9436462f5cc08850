// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package exprfile

import (
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Built-in expressions, see Example.
var builtins = map[string]string{
	"rational": `
name: rational
description: (x^3 - 5x^2 + 10x - 20) / (x-5)^2
input: x
x: 2
steps:
  - {op: pow, value: 3}
  - op: combine
    using: sub
    unit: {input: x, steps: [{op: pow, value: 2}, {op: mul, value: 5}]}
  - op: combine
    using: add
    unit: {input: x, steps: [{op: mul, value: 10}]}
  - {op: sub, value: 20}
  - op: combine
    using: div
    unit: {input: x, steps: [{op: sub, value: 5}, {op: pow, value: 2}]}
`,
	"singular": `
name: singular
description: exp(|log(5x+3) - 5|^0.5) / 2
input: x
x: 1
steps:
  - {op: mul, value: 5}
  - {op: add, value: 3}
  - {op: log}
  - {op: sub, value: 5}
  - {op: abs}
  - {op: pow, value: 0.5}
  - {op: exp}
  - {op: div, value: 2}
`,
}

// Examples returns the names of the built-in expressions, sorted.
func Examples() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Example returns the built-in expression with the given name.
func Example(name string) (*Expr, error) {
	source, found := builtins[name]
	if !found {
		return nil, errors.Errorf("unknown example %q, valid examples are %v", name, Examples())
	}
	return Parse([]byte(source))
}

// Marshal encodes the expression back to YAML.
func (e *Expr) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(e)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding expression %q", e.Name)
	}
	return data, nil
}
