// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/gomlx/scalargrad/pkg/support/sets"
	"github.com/pkg/errors"
)

// Arena owns the Variables of a computation graph, indexed by their VarId.
//
// Variables are kept in the order they were added.
type Arena struct {
	vars  map[VarId]*Variable
	order []VarId
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{vars: make(map[VarId]*Variable)}
}

// Add takes ownership of v. It returns false if v was already owned by the arena.
func (a *Arena) Add(v *Variable) bool {
	if _, found := a.vars[v.id]; found {
		return false
	}
	a.vars[v.id] = v
	a.order = append(a.order, v.id)
	return true
}

// Has returns whether the variable with the given id is owned by the arena.
func (a *Arena) Has(id VarId) bool {
	_, found := a.vars[id]
	return found
}

// Get returns the variable with the given id. It panics with ErrUnknownVariable if it is not owned by the arena.
func (a *Arena) Get(id VarId) *Variable {
	v, found := a.vars[id]
	if !found {
		panic(errors.Wrapf(ErrUnknownVariable, "Arena.Get(#%d)", id))
	}
	return v
}

// Len returns the number of variables owned.
func (a *Arena) Len() int { return len(a.vars) }

// Variables returns the owned variables, in the order they were added.
func (a *Arena) Variables() []*Variable {
	vars := make([]*Variable, 0, len(a.order))
	for _, id := range a.order {
		vars = append(vars, a.vars[id])
	}
	return vars
}

// Adopt transfers the ownership of all variables of other, except those in skip, to the arena.
// other is left empty.
func (a *Arena) Adopt(other *Arena, skip sets.Set[VarId]) {
	for _, id := range other.order {
		if skip.Has(id) {
			continue
		}
		a.Add(other.vars[id])
	}
	other.vars = make(map[VarId]*Variable)
	other.order = nil
}

// Release drops the ownership of the given variables. Ids not owned are ignored.
func (a *Arena) Release(ids ...VarId) {
	if len(ids) == 0 {
		return
	}
	released := sets.MakeWith(ids...)
	kept := a.order[:0]
	for _, id := range a.order {
		if released.Has(id) {
			delete(a.vars, id)
			continue
		}
		kept = append(kept, id)
	}
	a.order = kept
}
