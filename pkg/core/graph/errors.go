// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import "github.com/pkg/errors"

var (
	// ErrInvalidOperation is wrapped by panics of operations called with the wrong arity, or of the
	// formula paths of the Input operation.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrBadWalk is wrapped by panics of the backward pass reaching a state inconsistent with the
	// structure of the graph.
	ErrBadWalk = errors.New("inconsistent backward walk")

	// ErrCycle is wrapped by panics of Forward and Backward when the graph reachable from the output
	// is not acyclic.
	ErrCycle = errors.New("cycle in computation graph")

	// ErrUnknownVariable is wrapped by panics when looking up a variable not owned by the arena.
	ErrUnknownVariable = errors.New("variable not owned by arena")

	// ErrNotAnOutput is wrapped by panics of Forward and Backward when the given output has consumers.
	ErrNotAnOutput = errors.New("variable is not an output")
)
