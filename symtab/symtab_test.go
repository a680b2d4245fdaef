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

package symtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mangle-ground/ground/ast"
)

func newFrozenTable(t *testing.T) *SymbolTable {
	t.Helper()
	tab := New()
	if err := tab.AddType(ast.TypeSym{Name: "block"}, ast.TypeSym{}); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	on := ast.PredicateSym{Name: "on", Arity: 2}
	clear := ast.PredicateSym{Name: "clear", Arity: 1}
	if err := tab.AddPredicate(on); err != nil {
		t.Fatalf("AddPredicate(on): %v", err)
	}
	if err := tab.AddPredicate(clear); err != nil {
		t.Fatalf("AddPredicate(clear): %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := tab.AddObject(name, ast.TypeSym{Name: "block"}); err != nil {
			t.Fatalf("AddObject(%s): %v", name, err)
		}
	}
	if err := tab.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return tab
}

func TestAtomCodeDecodeAtomRoundTrip(t *testing.T) {
	tab := newFrozenTable(t)
	on := ast.PredicateSym{Name: "on", Arity: 2}

	for a := 0; a < tab.ObjectCount(); a++ {
		for b := 0; b < tab.ObjectCount(); b++ {
			code, err := tab.AtomCode(on, []int{a, b})
			if err != nil {
				t.Fatalf("AtomCode(%d,%d): %v", a, b, err)
			}
			pred, objs, err := tab.DecodeAtom(code)
			if err != nil {
				t.Fatalf("DecodeAtom(%d): %v", code, err)
			}
			if pred != on {
				t.Errorf("DecodeAtom(%d) predicate = %v, want %v", code, pred, on)
			}
			if diff := cmp.Diff([]int{a, b}, objs); diff != "" {
				t.Errorf("DecodeAtom(%d) objs mismatch (-want +got):\n%s", code, diff)
			}
		}
	}
}

func TestFactRangesAreContiguousAndDisjoint(t *testing.T) {
	tab := newFrozenTable(t)
	clear := ast.PredicateSym{Name: "clear", Arity: 1}
	on := ast.PredicateSym{Name: "on", Arity: 2}

	clearRange, err := tab.FactRange(clear)
	if err != nil {
		t.Fatalf("FactRange(clear): %v", err)
	}
	onRange, err := tab.FactRange(on)
	if err != nil {
		t.Fatalf("FactRange(on): %v", err)
	}
	// Sorted by (name, arity): clear < on, so clear's range precedes on's.
	if clearRange.Lower != 0 {
		t.Errorf("clear.Lower = %d, want 0", clearRange.Lower)
	}
	if got, want := clearRange.Upper(clear, tab.ObjectCount()), onRange.Lower; got != want {
		t.Errorf("clear.Upper = %d, on.Lower = %d, want equal (contiguous)", got, want)
	}
}

func TestAtomCodeArityMismatch(t *testing.T) {
	tab := newFrozenTable(t)
	on := ast.PredicateSym{Name: "on", Arity: 2}
	if _, err := tab.AtomCode(on, []int{0}); err == nil {
		t.Error("AtomCode with wrong arity: want error, got nil")
	}
}

func TestObjectsOfTypeIncludesSubtypes(t *testing.T) {
	tab := New()
	if err := tab.AddType(ast.TypeSym{Name: "vehicle"}, ast.TypeSym{}); err != nil {
		t.Fatalf("AddType(vehicle): %v", err)
	}
	if err := tab.AddType(ast.TypeSym{Name: "truck"}, ast.TypeSym{Name: "vehicle"}); err != nil {
		t.Fatalf("AddType(truck): %v", err)
	}
	if _, err := tab.AddObject("t1", ast.TypeSym{Name: "truck"}); err != nil {
		t.Fatalf("AddObject(t1): %v", err)
	}
	if _, err := tab.AddObject("v1", ast.TypeSym{Name: "vehicle"}); err != nil {
		t.Fatalf("AddObject(v1): %v", err)
	}
	if err := tab.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	got := tab.ObjectsOfType(ast.TypeSym{Name: "vehicle"})
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Errorf("ObjectsOfType(vehicle) mismatch (-want +got):\n%s", diff)
	}
	got = tab.ObjectsOfType(ast.TypeSym{Name: "truck"})
	if diff := cmp.Diff([]int{0}, got); diff != "" {
		t.Errorf("ObjectsOfType(truck) mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkStaticIsStatic(t *testing.T) {
	tab := New()
	p := ast.PredicateSym{Name: "adjacent", Arity: 2}
	if err := tab.AddPredicate(p); err != nil {
		t.Fatalf("AddPredicate: %v", err)
	}
	if tab.IsStatic(p) {
		t.Error("IsStatic before MarkStatic: want false")
	}
	tab.MarkStatic(p)
	if !tab.IsStatic(p) {
		t.Error("IsStatic after MarkStatic: want true")
	}
}

func TestAddAfterFreezeFails(t *testing.T) {
	tab := newFrozenTable(t)
	if err := tab.AddPredicate(ast.PredicateSym{Name: "new", Arity: 1}); err == nil {
		t.Error("AddPredicate after Freeze: want error, got nil")
	}
	if _, err := tab.AddObject("d", ast.TypeSym{Name: "block"}); err == nil {
		t.Error("AddObject after Freeze: want error, got nil")
	}
}
