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

	"github.com/mangle-ground/ground/ast"
)

// PartPredicate is one slot of a MergedPredicate: a reference to a base
// predicate plus a parameter-reordering permutation and a null-state flag.
//
// ParOrder[i] tells, for each output slot i of the enclosing
// MergedPredicate, which parameter of Predicate fills it. When NullState
// is true, slots beyond Predicate.Arity are fixed to the sentinel -1,
// marking "this part contributes no ground atom at this raw-argument
// tuple, only the null-state placeholder."
type PartPredicate struct {
	Predicate ast.PredicateSym
	NullState bool
	ParOrder  []int
}

// Equal reports structural equality, used by MergedPredicate's post-
// canonical equality check.
func (p PartPredicate) Equal(o PartPredicate) bool {
	if p.Predicate != o.Predicate || p.NullState != o.NullState || len(p.ParOrder) != len(o.ParOrder) {
		return false
	}
	for i := range p.ParOrder {
		if p.ParOrder[i] != o.ParOrder[i] {
			return false
		}
	}
	return true
}

// less implements the canonical ordering used by MakeCanonical:
// (predicate name/arity, nullState false < true, parOrder lexicographic).
func (p PartPredicate) less(o PartPredicate) bool {
	if p.Predicate.Name != o.Predicate.Name {
		return p.Predicate.Name < o.Predicate.Name
	}
	if p.Predicate.Arity != o.Predicate.Arity {
		return p.Predicate.Arity < o.Predicate.Arity
	}
	if p.NullState != o.NullState {
		return !p.NullState // false < true
	}
	for i := 0; i < len(p.ParOrder) && i < len(o.ParOrder); i++ {
		if p.ParOrder[i] != o.ParOrder[i] {
			return p.ParOrder[i] < o.ParOrder[i]
		}
	}
	return len(p.ParOrder) < len(o.ParOrder)
}

func (p PartPredicate) String() string {
	s := p.Predicate.Name
	if p.NullState {
		s += " (null state)"
	}
	for _, o := range p.ParOrder {
		s += fmt.Sprintf(" %d", o)
	}
	return s
}

// appendInstantiations appends, to group, the ground atom codes this part
// contributes for every assignment of the mergedParCount free ("merged")
// slots, given the raw (fixed) argument tuple rawArgs for the remaining
// slots. objectCount is O, the size of the frozen object universe.
//
// This is a direct port of PartPredicate::appendInstantiations from the
// original MIPS source: maxPower is the highest exponent any slot can
// carry (Predicate.Arity-1). Slots holding the null-state sentinel -1 are
// skipped before any exponent is computed, so a negative
// (maxPower - parOrder[i]) arises only when parOrder[i] names an argument
// beyond the predicate's arity; warn is invoked for each such slot, which
// then contributes no term.
func (p PartPredicate) appendInstantiations(lower int, rawArgs []int, group []int, mergedParCount, objectCount int, warn func(string)) []int {
	nullVarCount := len(p.ParOrder) - p.Predicate.Arity
	maxPower := len(p.ParOrder) - 1 - nullVarCount

	code := lower
	for i := mergedParCount; i < len(p.ParOrder); i++ {
		if p.ParOrder[i] == -1 {
			continue // null-state sentinel slot: contributes no term
		}
		exp := maxPower - p.ParOrder[i]
		if exp < 0 {
			warn(fmt.Sprintf("negative exponent for part %v at slot %d", p, i))
			continue
		}
		code += rawArgs[i-mergedParCount] * intPow(objectCount, exp)
	}

	if p.NullState && nullVarCount == mergedParCount {
		return append(group, code)
	}

	var mergedParams, mults []int
	for i := 0; i < mergedParCount; i++ {
		if p.ParOrder[i] >= 0 {
			exp := maxPower - p.ParOrder[i]
			if exp < 0 {
				warn(fmt.Sprintf("negative exponent for part %v at merged slot %d", p, i))
				continue
			}
			mergedParams = append(mergedParams, p.ParOrder[i])
			mults = append(mults, intPow(objectCount, exp))
		}
	}

	maxCount := intPow(objectCount, len(mergedParams))
	currParams := make([]int, len(mergedParams))
	for i := 0; i < maxCount; i++ {
		finalCode := code
		for j := range mergedParams {
			finalCode += mults[j] * currParams[j]
		}
		group = append(group, finalCode)
		for j := range currParams {
			if currParams[j] < objectCount-1 {
				currParams[j]++
				break
			}
			currParams[j] = 0
		}
	}
	return group
}

func intPow(base, exp int) int {
	if exp <= 0 {
		return 1
	}
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
