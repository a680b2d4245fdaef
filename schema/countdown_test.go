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
	"testing"

	"github.com/mangle-ground/ground/ast"
)

func TestCountdownAdmitsOnlyAfterAllUnaryPreconditionsSatisfied(t *testing.T) {
	a := &ActionSchema{ParameterTypes: []ast.TypeSym{{Name: "block"}}}
	a.InitCountdown(3)

	a.SetUnaryPreconditionCount(0, 0, 2)
	a.SetUnaryPreconditionCount(0, 1, 0) // already satisfies every unary precondition
	a.SetUnaryPreconditionCount(0, 2, 1)

	if got := a.GetValidArguments(0); len(got) != 1 || got[0] != 1 {
		t.Fatalf("GetValidArguments(0) after Set = %v, want [1]", got)
	}
	if !a.IsValidArgument(0, 1) {
		t.Error("IsValidArgument(0,1) = false, want true")
	}
	if a.IsValidArgument(0, 0) {
		t.Error("IsValidArgument(0,0) = true, want false")
	}

	if transitioned := a.DecreasePreconditionCountdown(0, 2); !transitioned {
		t.Error("DecreasePreconditionCountdown(0,2) from 1: want transition to true")
	}
	if !a.IsValidArgument(0, 2) {
		t.Error("IsValidArgument(0,2) after single decrement from 1: want true")
	}

	if transitioned := a.DecreasePreconditionCountdown(0, 0); transitioned {
		t.Error("DecreasePreconditionCountdown(0,0) from 2 to 1: want no transition yet")
	}
	if a.IsValidArgument(0, 0) {
		t.Error("IsValidArgument(0,0) after one of two decrements: want false")
	}
	if transitioned := a.DecreasePreconditionCountdown(0, 0); !transitioned {
		t.Error("DecreasePreconditionCountdown(0,0) from 1: want transition to true")
	}

	got := append([]int(nil), a.GetValidArguments(0)...)
	sortInts(got)
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("GetValidArguments(0) final = %v, want all of [0 1 2]", got)
	}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func TestEraseDuplicatesRemovesOnlyExactRepeats(t *testing.T) {
	a := &ActionSchema{}
	a.LogInstantiation(Instantiation{Params: []int{0, 1}, PreAddAtoms: []int{5}})
	a.LogInstantiation(Instantiation{Params: []int{0, 1}, PreAddAtoms: []int{5}}) // exact duplicate
	a.LogInstantiation(Instantiation{Params: []int{0, 2}, PreAddAtoms: []int{5}})

	removed := a.EraseDuplicates()
	if removed != 1 {
		t.Errorf("EraseDuplicates removed = %d, want 1", removed)
	}
	if len(a.Instantiations()) != 2 {
		t.Errorf("len(Instantiations) after erase = %d, want 2", len(a.Instantiations()))
	}
}

func TestEraseNoopsSkippedWhenSchemaHasWhenChildren(t *testing.T) {
	a := &ActionSchema{Whens: []*ActionSchema{{Name: "child"}}}
	a.LogInstantiation(Instantiation{Noop: true})

	if removed := a.EraseNoops(); removed != 0 {
		t.Errorf("EraseNoops with When children removed = %d, want 0 (conditional effects may un-noop at runtime)", removed)
	}
	if len(a.Instantiations()) != 1 {
		t.Errorf("len(Instantiations) after no-op EraseNoops = %d, want 1", len(a.Instantiations()))
	}
}

func TestEraseNoopsDropsNoopWithoutWhenChildren(t *testing.T) {
	a := &ActionSchema{}
	a.LogInstantiation(Instantiation{Noop: true})
	a.LogInstantiation(Instantiation{Noop: false})

	if removed := a.EraseNoops(); removed != 1 {
		t.Errorf("EraseNoops removed = %d, want 1", removed)
	}
	if len(a.Instantiations()) != 1 || a.Instantiations()[0].Noop {
		t.Errorf("Instantiations after EraseNoops = %+v, want exactly the non-noop record", a.Instantiations())
	}
}

func TestEraseConstantsDropsOnlyConstantOnly(t *testing.T) {
	a := &ActionSchema{}
	a.LogInstantiation(Instantiation{ConstantOnly: true})
	a.LogInstantiation(Instantiation{ConstantOnly: false})

	if removed := a.EraseConstants(); removed != 1 {
		t.Errorf("EraseConstants removed = %d, want 1", removed)
	}
	if len(a.Instantiations()) != 1 || a.Instantiations()[0].ConstantOnly {
		t.Errorf("Instantiations after EraseConstants = %+v, want exactly the non-constant record", a.Instantiations())
	}
}

func TestEqualAtomSetsIgnoresOrderAndChecksMultiset(t *testing.T) {
	if !EqualAtomSets([]int{1, 2, 3}, []int{3, 1, 2}) {
		t.Error("EqualAtomSets same multiset, different order: want true")
	}
	if EqualAtomSets([]int{1, 2}, []int{1, 2, 2}) {
		t.Error("EqualAtomSets different lengths: want false")
	}
}

func TestGetPreconditionsByMaxParBucketsByHighestParamAndSkipsUnary(t *testing.T) {
	// on(?x,?y): binary, max param index 1. clear(?x): unary, must not
	// appear in any preByMaxPar bucket.
	on := ast.SymbolicFact{
		Predicate: ast.PredicateSym{Name: "on", Arity: 2},
		Bindings:  []ast.Binding{ast.Param(0), ast.Param(1)},
	}
	clearFact := ast.SymbolicFact{
		Predicate: ast.PredicateSym{Name: "clear", Arity: 1},
		Bindings:  []ast.Binding{ast.Param(0)},
	}
	a := &ActionSchema{
		ParameterTypes: []ast.TypeSym{{Name: "block"}, {Name: "block"}},
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 2, Fact: on},
			{LiveParamCount: 2, Fact: clearFact},
		},
	}
	a.InitCountdown(2)

	if got := a.GetPreconditionsByMaxPar(0); len(got) != 0 {
		t.Errorf("GetPreconditionsByMaxPar(0) = %v, want empty (clear is unary, on needs param 1)", got)
	}
	got := a.GetPreconditionsByMaxPar(1)
	if len(got) != 1 || got[0].Fact.Fact.Predicate.Name != "on" || got[0].IsDel {
		t.Errorf("GetPreconditionsByMaxPar(1) = %v, want exactly the on/2 PreAdd fact", got)
	}
}
