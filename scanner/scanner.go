// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scanner implements ConstantPredicateScanner: it identifies
// static predicates referenced in a schema's precondition list and folds
// their truth into parameter-type restrictions instead of leaving them as
// runtime checks, shrinking the Cartesian product the grounding engine has
// to search.
package scanner

import (
	"fmt"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/symtab"
)

// HoldsFunc reports whether pred applied to args is true in the initial
// state. It is supplied by the driver (package explore), which owns the
// problem's initial-state facts; the scanner itself holds no state beyond
// the symbol table.
type HoldsFunc func(pred ast.PredicateSym, args []int) bool

// Scanner folds static predicates out of precondition lists.
type Scanner struct {
	table    *symtab.SymbolTable
	isStatic func(ast.PredicateSym) bool
	holds    HoldsFunc
}

// New returns a Scanner backed by table. isStatic should report whether a
// predicate never appears in any schema's add/del effect list domain-wide
// (typically symtab.SymbolTable.IsStatic, populated by a prior domain-wide
// pass); holds reports initial-state truth for a fully ground fact.
func New(table *symtab.SymbolTable, isStatic func(ast.PredicateSym) bool, holds HoldsFunc) *Scanner {
	return &Scanner{table: table, isStatic: isStatic, holds: holds}
}

// FoldedBody is the result of scanning a RawActionBody: the effective
// parameter list after forall-unfolding (the body's own parameters plus
// the forall slot, if any; folding a constant fact adds no parameters), the
// per-parameter object-domain restriction folded in from constant facts,
// and the PreAdd list with constant facts dropped.
type FoldedBody struct {
	ParameterTypes []ast.TypeSym
	// Restriction[i], when present, is the exhaustive set of object codes
	// parameter i may be bound to, folded in from one or more constant
	// facts. A parameter with no entry is unrestricted (beyond its type).
	Restriction map[int][]int
	PreAdd      []ast.ScopedFact
	Whens       []FoldedBody
	Source      ast.RawActionBody
}

// ErrUnsupportedNesting is returned when a schema nests forall quantifiers
// more than one layer deep (spec §4.1 edge policy).
var ErrUnsupportedNesting = fmt.Errorf("scanner: forall nesting deeper than one layer is unsupported")

// Scan folds constant predicates out of body's PreAdd list, recursively
// scanning body.Whens children. parentDepth is the number of forall layers
// already unfolded by an enclosing body; callers scanning a top-level
// schema pass 0.
func (s *Scanner) Scan(body ast.RawActionBody, parentDepth int) (FoldedBody, error) {
	depth := parentDepth
	paramTypes := append([]ast.TypeSym(nil), body.ParameterTypes...)
	if body.Forall != nil {
		if depth >= 1 {
			return FoldedBody{}, ErrUnsupportedNesting
		}
		depth++
		paramTypes = append(paramTypes, *body.Forall)
	}

	restriction := map[int][]int{}
	var kept []ast.ScopedFact
	for _, sf := range body.PreAdd {
		fact := sf.Fact
		if !s.isStatic(fact.Predicate) {
			kept = append(kept, sf)
			continue
		}
		r, err := s.foldFact(fact, paramTypes)
		if err != nil {
			return FoldedBody{}, err
		}
		for paramIdx, objs := range r {
			restriction[paramIdx] = intersectOrSet(restriction[paramIdx], objs)
		}
		// Statically-true or -folded facts are dropped from the runtime
		// precondition body; their truth now lives in `restriction`.
	}

	folded := FoldedBody{
		ParameterTypes: paramTypes,
		Restriction:    restriction,
		PreAdd:         kept,
		Source:         body,
	}
	for _, child := range body.Whens {
		childFolded, err := s.Scan(child, depth)
		if err != nil {
			return FoldedBody{}, err
		}
		folded.Whens = append(folded.Whens, childFolded)
	}
	return folded, nil
}

// intersectOrSet intersects newObjs into an existing restriction, or
// returns it unchanged if this is the first constant fact touching that
// parameter.
func intersectOrSet(existing []int, newObjs []int) []int {
	if existing == nil {
		return newObjs
	}
	set := map[int]bool{}
	for _, o := range newObjs {
		set[o] = true
	}
	out := []int{}
	for _, o := range existing {
		if set[o] {
			out = append(out, o)
		}
	}
	return out
}

// foldFact computes, for every free (parameter-bound) slot of fact, the set
// of object codes that slot may take such that some completion of the
// other free slots makes fact true in the initial state. A fully-ground
// fact is checked directly and reported as an error if statically false
// (an "Initial-state inconsistency"-adjacent condition the scanner can
// detect early, spec §7).
func (s *Scanner) foldFact(fact ast.SymbolicFact, paramTypes []ast.TypeSym) (map[int][]int, error) {
	type freeSlot struct{ bindPos, paramIdx int }
	var free []freeSlot
	for bp, b := range fact.Bindings {
		if b.IsParam {
			free = append(free, freeSlot{bp, b.ParamIndex})
		}
	}
	args := make([]int, len(fact.Bindings))
	if len(free) == 0 {
		for i, b := range fact.Bindings {
			args[i] = b.Const
		}
		if !s.holds(fact.Predicate, args) {
			return nil, fmt.Errorf("scanner: constant fact %v does not hold in the initial state", fact)
		}
		return nil, nil
	}

	domains := make([][]int, len(free))
	total := 1
	for i, fs := range free {
		if fs.paramIdx < 0 || fs.paramIdx >= len(paramTypes) {
			return nil, fmt.Errorf("scanner: fact %v references unknown parameter %d", fact, fs.paramIdx)
		}
		domains[i] = s.table.ObjectsOfType(paramTypes[fs.paramIdx])
		total *= len(domains[i])
	}

	result := map[int][]int{}
	seen := map[int]map[int]bool{}
	idxs := make([]int, len(free))
	for c := 0; c < total; c++ {
		rem := c
		for i, d := range domains {
			idxs[i] = rem % len(d)
			rem /= len(d)
		}
		for i, b := range fact.Bindings {
			if !b.IsParam {
				args[i] = b.Const
			}
		}
		for i, fs := range free {
			args[fs.bindPos] = domains[i][idxs[i]]
		}
		if !s.holds(fact.Predicate, args) {
			continue
		}
		for i, fs := range free {
			if seen[fs.paramIdx] == nil {
				seen[fs.paramIdx] = map[int]bool{}
			}
			v := args[fs.bindPos]
			if !seen[fs.paramIdx][v] {
				seen[fs.paramIdx][v] = true
				result[fs.paramIdx] = append(result[fs.paramIdx], v)
			}
		}
	}
	// A slot no tuple satisfies still gets an (empty) entry, so the
	// parameter is restricted to nothing rather than left unrestricted.
	for _, fs := range free {
		if _, ok := result[fs.paramIdx]; !ok {
			result[fs.paramIdx] = []int{}
		}
	}
	return result, nil
}
