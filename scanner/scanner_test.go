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

package scanner

import (
	"sort"
	"testing"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/symtab"
)

// buildLogisticsTable constructs a tiny logistics-style universe: two
// locations l0,l1 and a static "road" predicate connecting l0 to l1 only,
// the classic static-predicate-folding case (spec §8's logistics scenario).
func buildLogisticsTable(t *testing.T) (*symtab.SymbolTable, ast.PredicateSym) {
	t.Helper()
	tab := symtab.New()
	loc := ast.TypeSym{Name: "location"}
	if err := tab.AddType(loc, ast.TypeSym{}); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	road := ast.PredicateSym{Name: "road", Arity: 2}
	if err := tab.AddPredicate(road); err != nil {
		t.Fatalf("AddPredicate(road): %v", err)
	}
	for _, name := range []string{"l0", "l1"} {
		if _, err := tab.AddObject(name, loc); err != nil {
			t.Fatalf("AddObject(%s): %v", name, err)
		}
	}
	if err := tab.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	tab.MarkStatic(road)
	return tab, road
}

func TestScanFoldsStaticPredicateIntoRestriction(t *testing.T) {
	tab, road := buildLogisticsTable(t)
	holds := func(pred ast.PredicateSym, args []int) bool {
		return pred == road && len(args) == 2 && args[0] == 0 && args[1] == 1 // road(l0,l1) only
	}
	s := New(tab, tab.IsStatic, holds)

	// drive(?from, ?to): precondition road(?from,?to).
	body := ast.RawActionBody{
		Name:           "drive",
		ParameterTypes: []ast.TypeSym{{Name: "location"}, {Name: "location"}},
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 2, Fact: ast.SymbolicFact{
				Predicate: road,
				Bindings:  []ast.Binding{ast.Param(0), ast.Param(1)},
			}},
		},
	}

	folded, err := s.Scan(body, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(folded.PreAdd) != 0 {
		t.Errorf("folded.PreAdd = %v, want empty (road is static, folded into Restriction)", folded.PreAdd)
	}
	if got := sortedCopy(folded.Restriction[0]); len(got) != 1 || got[0] != 0 {
		t.Errorf("Restriction[0] (from) = %v, want [0] (only l0 has an outgoing road)", got)
	}
	if got := sortedCopy(folded.Restriction[1]); len(got) != 1 || got[0] != 1 {
		t.Errorf("Restriction[1] (to) = %v, want [1] (only l1 has an incoming road)", got)
	}
}

func TestScanKeepsNonStaticPreconditions(t *testing.T) {
	tab := symtab.New()
	at := ast.PredicateSym{Name: "at", Arity: 1}
	if err := tab.AddPredicate(at); err != nil {
		t.Fatalf("AddPredicate: %v", err)
	}
	if _, err := tab.AddObject("o0", ast.ObjectTop); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if err := tab.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	// at is not marked static.
	s := New(tab, tab.IsStatic, func(ast.PredicateSym, []int) bool { return true })

	body := ast.RawActionBody{
		ParameterTypes: []ast.TypeSym{{Name: "object"}},
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: at, Bindings: []ast.Binding{ast.Param(0)}}},
		},
	}
	folded, err := s.Scan(body, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(folded.PreAdd) != 1 {
		t.Errorf("folded.PreAdd = %v, want the one dynamic precondition kept", folded.PreAdd)
	}
	if len(folded.Restriction) != 0 {
		t.Errorf("folded.Restriction = %v, want empty", folded.Restriction)
	}
}

func TestScanRejectsNestedForall(t *testing.T) {
	tab := symtab.New()
	if err := tab.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	s := New(tab, tab.IsStatic, func(ast.PredicateSym, []int) bool { return true })

	objType := ast.TypeSym{Name: "object"}
	inner := ast.RawActionBody{Forall: &objType}
	outer := ast.RawActionBody{Forall: &objType, Whens: []ast.RawActionBody{inner}}

	if _, err := s.Scan(outer, 0); err != ErrUnsupportedNesting {
		t.Errorf("Scan nested forall: err = %v, want ErrUnsupportedNesting", err)
	}
}

func TestScanRejectsStaticallyFalseGroundFact(t *testing.T) {
	tab, road := buildLogisticsTable(t)
	s := New(tab, tab.IsStatic, func(ast.PredicateSym, []int) bool { return false })

	body := ast.RawActionBody{
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 0, Fact: ast.SymbolicFact{
				Predicate: road,
				Bindings:  []ast.Binding{ast.Bound(0), ast.Bound(1)},
			}},
		},
	}
	if _, err := s.Scan(body, 0); err == nil {
		t.Error("Scan with statically-false ground fact: want error, got nil")
	}
}

func sortedCopy(s []int) []int {
	out := append([]int(nil), s...)
	sort.Ints(out)
	return out
}
