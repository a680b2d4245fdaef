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

package schema

import (
	"fmt"
	"sort"

	"github.com/golang/glog"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/symtab"
)

// MergedPredicate is an ordered collection of PartPredicates sharing a
// common output arity; it produces the canonical ground-atom code ranges
// ("fact groups") used by the engine's fast precondition-matching path.
//
// Invariants: MergedParCount <= ParCount and MergedParCount <= len(part.ParOrder)
// for every part; after MakeCanonical, Parts is sorted and equality is
// structural on (ParCount, Parts).
type MergedPredicate struct {
	ParCount       int
	MergedParCount int
	Parts          []PartPredicate
}

// NewMergedPredicate constructs a MergedPredicate from an initial predicate
// and a projection vector listing which of its arguments are kept as
// output ("merged") parameters. The internal order is pars followed by the
// remaining argument indices in ascending order, exactly as the original
// MIPS MergedPredicate constructor computes it.
func NewMergedPredicate(initPred ast.PredicateSym, pars []int) MergedPredicate {
	parCount := initPred.Arity
	mergedParCount := len(pars)
	order := append([]int(nil), pars...)
	parsIndex := 0
	for i := 0; i < parCount; i++ {
		if parsIndex < len(pars) && i == pars[parsIndex] {
			parsIndex++
		} else {
			order = append(order, i)
		}
	}
	return MergedPredicate{
		ParCount:       parCount,
		MergedParCount: mergedParCount,
		Parts:          []PartPredicate{{Predicate: initPred, NullState: false, ParOrder: order}},
	}
}

// Push appends a new part. NullState is set automatically iff p's arity
// differs from the base ParCount (a "narrower" predicate being folded in
// as a null-state extension, spec §3 MergedPredicate).
func (m *MergedPredicate) Push(p ast.PredicateSym, order []int) {
	m.Parts = append(m.Parts, PartPredicate{
		Predicate: p,
		NullState: p.Arity != m.ParCount,
		ParOrder:  order,
	})
}

// Pop removes the most recently pushed part.
func (m *MergedPredicate) Pop() {
	m.Parts = m.Parts[:len(m.Parts)-1]
}

// FindPredicate returns a pointer to the part describing p, or nil if none
// matches. The returned pointer is a weak reference, valid only until the
// next Push or Pop (spec §3, "Lifecycles and ownership").
func (m *MergedPredicate) FindPredicate(p ast.PredicateSym) *PartPredicate {
	for i := range m.Parts {
		if m.Parts[i].Predicate == p {
			return &m.Parts[i]
		}
	}
	return nil
}

// MakeCanonical sorts Parts under the ordering (predicate, nullState false
// < true, parOrder lexicographic), so that structurally identical merged
// predicates compare Equal regardless of construction order.
func (m *MergedPredicate) MakeCanonical() {
	sort.Slice(m.Parts, func(i, j int) bool {
		return m.Parts[i].less(m.Parts[j])
	})
}

// Equal reports whether m and o, both already canonical, describe the same
// multiset of (predicate, nullState, parOrder) triples.
func (m MergedPredicate) Equal(o MergedPredicate) bool {
	if m.ParCount != o.ParCount || len(m.Parts) != len(o.Parts) {
		return false
	}
	for i := range m.Parts {
		if !m.Parts[i].Equal(o.Parts[i]) {
			return false
		}
	}
	return true
}

// GetFactGroups yields one list per raw-argument tuple of length
// ParCount-MergedParCount; each list is the set of ground atom codes
// produced by every part under every assignment of the MergedParCount free
// slots. Every reachable-but-unexplained negative-exponent case (spec §9's
// open question) is logged as a warning through defaultWarn; the affected
// slot contributes no term and grouping continues.
func (m MergedPredicate) GetFactGroups(table *symtab.SymbolTable, objectCount int) ([][]int, error) {
	if warn := m.validate(); warn != "" {
		return nil, fmt.Errorf("schema: %s", warn)
	}
	lowers := make([]int, len(m.Parts))
	for i, part := range m.Parts {
		r, err := table.FactRange(part.Predicate)
		if err != nil {
			return nil, fmt.Errorf("schema: fact range for %v: %w", part.Predicate, err)
		}
		lowers[i] = r.Lower
	}

	rawArity := m.ParCount - m.MergedParCount
	rawTupleCount := intPow(objectCount, rawArity)
	groups := make([][]int, 0, rawTupleCount)
	for idx := 0; idx < rawTupleCount; idx++ {
		raw := decodeMixedRadixTuple(idx, rawArity, objectCount)
		var group []int
		for i, part := range m.Parts {
			group = part.appendInstantiations(lowers[i], raw, group, m.MergedParCount, objectCount, defaultWarn)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func defaultWarn(msg string) { glog.Warning("schema: " + msg) }

func (m MergedPredicate) validate() string {
	for _, part := range m.Parts {
		if m.MergedParCount > m.ParCount || m.MergedParCount > len(part.ParOrder) {
			return fmt.Sprintf("mergedParCount %d exceeds parCount %d or parOrder length %d", m.MergedParCount, m.ParCount, len(part.ParOrder))
		}
	}
	return ""
}

// decodeMixedRadixTuple returns the idx-th tuple of length n over radix
// objectCount, least-significant digit first -- the same enumeration order
// PartPredicate.appendInstantiations uses for its own currParams counter.
// For n == 0 there is exactly one tuple (the empty one), matching the spec
// boundary "mergedParCount == parCount".
func decodeMixedRadixTuple(idx, n, objectCount int) []int {
	t := make([]int, n)
	for i := 0; i < n; i++ {
		t[i] = idx % objectCount
		idx /= objectCount
	}
	return t
}
