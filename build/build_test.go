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

package build

import (
	"testing"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/explore"
	"github.com/mangle-ground/ground/groundopts"
)

// blocksworldDomainProblem builds a minimal 2-block pickup domain end to
// end through the whole build -> explore -> ground pipeline (spec §8's
// pickup scenario).
func blocksworldDomainProblem() (ast.RawDomain, ast.RawProblem) {
	block := ast.TypeSym{Name: "block"}
	clear := ast.PredicateSym{Name: "clear", Arity: 1}
	handempty := ast.PredicateSym{Name: "handempty", Arity: 0}
	holding := ast.PredicateSym{Name: "holding", Arity: 1}

	pickup := ast.RawActionBody{
		Name:           "pickup",
		ParameterTypes: []ast.TypeSym{block},
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: clear, Bindings: []ast.Binding{ast.Param(0)}}},
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: handempty}},
		},
		EffDel: []ast.ScopedFact{
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: clear, Bindings: []ast.Binding{ast.Param(0)}}},
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: handempty}},
		},
		EffAdd: []ast.ScopedFact{
			{LiveParamCount: 1, Fact: ast.SymbolicFact{Predicate: holding, Bindings: []ast.Binding{ast.Param(0)}}},
		},
	}

	domain := ast.RawDomain{
		Name:         "blocksworld",
		Types:        []ast.TypeDecl{{Type: block, Parent: ast.TypeSym{}}},
		Predicates:   []ast.PredicateSym{clear, handempty, holding},
		ActionBodies: []ast.RawActionBody{pickup},
	}
	problem := ast.RawProblem{
		Objects: []ast.Object{
			{ID: 0, Name: "a", Type: block},
			{ID: 1, Name: "b", Type: block},
		},
		InitTrue: []ast.SymbolicFact{
			{Predicate: clear, Bindings: []ast.Binding{ast.Bound(0)}},
			{Predicate: clear, Bindings: []ast.Binding{ast.Bound(1)}},
			{Predicate: handempty},
		},
	}
	return domain, problem
}

func TestFullPipelineGroundsPickupPerBlock(t *testing.T) {
	domain, problem := blocksworldDomainProblem()

	table, err := SymbolTable(domain, problem)
	if err != nil {
		t.Fatalf("SymbolTable: %v", err)
	}

	holding := ast.PredicateSym{Name: "holding", Arity: 1}
	if table.IsStatic(holding) {
		t.Error("holding should not be static: it is an EffAdd target")
	}

	driver, err := explore.New(table, problem.InitTrue, domain.Predicates, nil, groundopts.New(), nil)
	if err != nil {
		t.Fatalf("explore.New: %v", err)
	}

	scan := driver.NewScanner()
	schemas, restrictions, err := Schemas(scan, domain.ActionBodies)
	if err != nil {
		t.Fatalf("Schemas: %v", err)
	}
	for a, r := range restrictions {
		driver.SetRestriction(a, r)
	}

	result, err := driver.Run(schemas)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := result.ByName["pickup"]
	if len(got) != 2 {
		t.Fatalf("pickup instantiations = %d, want 2 (one per block)", len(got))
	}
	seen := map[int]bool{}
	for _, act := range got {
		seen[act.Params[0]] = true
		if act.Derived {
			t.Errorf("pickup(%v).Derived = true, want false (Normal schema)", act.Params)
		}
	}
	if !seen[0] || !seen[1] {
		t.Errorf("pickup grounded for blocks %v, want both 0 and 1", seen)
	}
}

func TestFullPipelineFoldsStaticPredicateIntoRestriction(t *testing.T) {
	block := ast.TypeSym{Name: "block"}
	road := ast.PredicateSym{Name: "road", Arity: 2}
	drive := ast.PredicateSym{Name: "drive-marker", Arity: 1}

	body := ast.RawActionBody{
		Name:           "drive",
		ParameterTypes: []ast.TypeSym{block, block},
		PreAdd: []ast.ScopedFact{
			{LiveParamCount: 2, Fact: ast.SymbolicFact{Predicate: road, Bindings: []ast.Binding{ast.Param(0), ast.Param(1)}}},
		},
		EffAdd: []ast.ScopedFact{
			{LiveParamCount: 2, Fact: ast.SymbolicFact{Predicate: drive, Bindings: []ast.Binding{ast.Param(0)}}},
		},
	}
	domain := ast.RawDomain{
		Types:        []ast.TypeDecl{{Type: block, Parent: ast.TypeSym{}}},
		Predicates:   []ast.PredicateSym{road, drive},
		ActionBodies: []ast.RawActionBody{body},
	}
	problem := ast.RawProblem{
		Objects: []ast.Object{
			{ID: 0, Name: "l0", Type: block},
			{ID: 1, Name: "l1", Type: block},
		},
		InitTrue: []ast.SymbolicFact{
			{Predicate: road, Bindings: []ast.Binding{ast.Bound(0), ast.Bound(1)}}, // only l0->l1
		},
	}

	table, err := SymbolTable(domain, problem)
	if err != nil {
		t.Fatalf("SymbolTable: %v", err)
	}
	if !table.IsStatic(road) {
		t.Fatal("road should be static: it is never an effect target")
	}

	driver, err := explore.New(table, problem.InitTrue, domain.Predicates, nil, groundopts.New(), nil)
	if err != nil {
		t.Fatalf("explore.New: %v", err)
	}
	scan := driver.NewScanner()
	schemas, restrictions, err := Schemas(scan, domain.ActionBodies)
	if err != nil {
		t.Fatalf("Schemas: %v", err)
	}
	for a, r := range restrictions {
		driver.SetRestriction(a, r)
	}

	result, err := driver.Run(schemas)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := result.ByName["drive"]
	if len(got) != 1 {
		t.Fatalf("drive instantiations = %d, want exactly 1 (only l0->l1 has a road)", len(got))
	}
	if got[0].Params[0] != 0 || got[0].Params[1] != 1 {
		t.Errorf("drive params = %v, want [0 1]", got[0].Params)
	}
}
