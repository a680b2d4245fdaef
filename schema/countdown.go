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
	"sort"

	"github.com/mangle-ground/ground/ast"
)

// InitCountdown sizes preByMaxPar, preconditionCount and validArguments for
// an object universe of size objectCount. Only the privileged driver
// (package explore) is meant to call this, mirroring the original C++
// friend declaration that let ExploreStep::initActionData reach into an
// Action's private countdown state: here that's modeled as "only explore
// calls this exported method, by convention," since Go has no friend.
func (a *ActionSchema) InitCountdown(objectCount int) {
	maxPar := a.ParameterCount()
	a.preByMaxPar = make([][]BucketedFact, maxPar)
	a.preconditionCount = make([][]int, maxPar)
	a.validArguments = make([][]int, maxPar)
	for i := 0; i < maxPar; i++ {
		a.preconditionCount[i] = make([]int, objectCount)
	}

	bucket := func(facts []ast.ScopedFact, isDel bool) {
		for _, sf := range facts {
			if len(sf.Fact.Bindings) <= 1 {
				continue // unary preconditions drive preconditionCount, not preByMaxPar
			}
			m := maxParamIndex(sf.Fact)
			if m < 0 || m >= maxPar {
				continue
			}
			a.preByMaxPar[m] = append(a.preByMaxPar[m], BucketedFact{Fact: sf, IsDel: isDel})
		}
	}
	bucket(a.PreAdd, false)
	bucket(a.PreDel, true)
}

// maxParamIndex returns the highest schema-parameter index referenced by
// fact's bindings, or -1 if fact is fully ground.
func maxParamIndex(fact ast.SymbolicFact) int {
	max := -1
	for _, b := range fact.Bindings {
		if b.IsParam && b.ParamIndex > max {
			max = b.ParamIndex
		}
	}
	return max
}

// SetUnaryPreconditionCount sets the number of unary preconditions on
// parNo that objNo must satisfy before it becomes a valid argument. Called
// once per (parNo, objNo) by the driver during InitCountdown's caller
// (package explore), after counting unary PreAdd/PreDel facts that mention
// only parNo.
func (a *ActionSchema) SetUnaryPreconditionCount(parNo, objNo, count int) {
	a.preconditionCount[parNo][objNo] = count
	if count == 0 {
		a.validArguments[parNo] = append(a.validArguments[parNo], objNo)
	}
}

// GetPreconditionsByMaxPar returns the non-unary precondition facts whose
// matching becomes decidable exactly when parameter maxPar is bound.
func (a *ActionSchema) GetPreconditionsByMaxPar(maxPar int) []BucketedFact {
	return a.preByMaxPar[maxPar]
}

// DecreasePreconditionCountdown decrements the unary-precondition count for
// (parNo, objNo) and returns true iff this decrement is the one that
// transitions objNo to valid. The count is monotone and append-only:
// validArguments only ever grows.
func (a *ActionSchema) DecreasePreconditionCountdown(parNo, objNo int) bool {
	a.preconditionCount[parNo][objNo]--
	if a.preconditionCount[parNo][objNo] == 0 {
		a.validArguments[parNo] = append(a.validArguments[parNo], objNo)
		return true
	}
	return false
}

// GetValidArguments returns the objects currently admitted for parNo.
func (a *ActionSchema) GetValidArguments(parNo int) []int {
	return a.validArguments[parNo]
}

// IsValidArgument reports whether objNo has satisfied every unary
// precondition on parNo.
func (a *ActionSchema) IsValidArgument(parNo, objNo int) bool {
	return a.preconditionCount[parNo][objNo] == 0
}

// LogInstantiation appends a ground record. Append-only, like every other
// engine-phase mutation except the erase passes.
func (a *ActionSchema) LogInstantiation(inst Instantiation) {
	a.instantiations = append(a.instantiations, inst)
}

// compareInstantiation implements the Instantiation total order: lexicographic
// on the parameter tuple, then on the four ground-atom lists.
func compareInstantiation(a, b Instantiation) int {
	if c := compareInts(a.Params, b.Params); c != 0 {
		return c
	}
	if c := compareInts(a.PreAddAtoms, b.PreAddAtoms); c != 0 {
		return c
	}
	if c := compareInts(a.PreDelAtoms, b.PreDelAtoms); c != 0 {
		return c
	}
	if c := compareInts(a.EffAddAtoms, b.EffAddAtoms); c != 0 {
		return c
	}
	return compareInts(a.EffDelAtoms, b.EffDelAtoms)
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// EqualAtomSets reports whether a and b contain the same atom codes with
// the same multiplicities, ignoring order. Used by package ground to decide the
// Noop flag when an instantiation is emitted.
func EqualAtomSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]int(nil), a...)
	sb := append([]int(nil), b...)
	sort.Ints(sa)
	sort.Ints(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// EraseDuplicates sorts Instantiations under the total order and retains
// one representative per equivalence class. It returns the number of
// records removed, so callers can report "no silent data loss" (spec §7).
func (a *ActionSchema) EraseDuplicates() int {
	before := len(a.instantiations)
	sort.Slice(a.instantiations, func(i, j int) bool {
		return compareInstantiation(a.instantiations[i], a.instantiations[j]) < 0
	})
	out := a.instantiations[:0]
	for i, inst := range a.instantiations {
		if i == 0 || compareInstantiation(a.instantiations[i-1], inst) != 0 {
			out = append(out, inst)
		}
	}
	a.instantiations = out
	return before - len(a.instantiations)
}

// EraseNoops drops instantiations whose ground add-effects equal their
// ground del-effects. It is always a no-op (returns 0) when the schema has
// any When children, since the effective effects then depend on runtime
// condition evaluation and cannot be judged noop at grounding time.
func (a *ActionSchema) EraseNoops() int {
	if len(a.Whens) > 0 {
		return 0
	}
	before := len(a.instantiations)
	out := a.instantiations[:0]
	for _, inst := range a.instantiations {
		if !inst.Noop {
			out = append(out, inst)
		}
	}
	a.instantiations = out
	return before - len(a.instantiations)
}

// EraseConstants drops instantiations whose only referenced atoms are
// statically determined (true or false regardless of reachable state).
func (a *ActionSchema) EraseConstants() int {
	before := len(a.instantiations)
	out := a.instantiations[:0]
	for _, inst := range a.instantiations {
		if !inst.ConstantOnly {
			out = append(out, inst)
		}
	}
	a.instantiations = out
	return before - len(a.instantiations)
}
