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

// Package build wires the parser-facing ast.RawDomain/RawProblem types into
// a frozen symtab.SymbolTable and a forest of schema.ActionSchema, running
// the ConstantPredicateScanner over every action body along the way. It is
// the glue between package ast's input types and package explore's driver,
// kept separate from both so a caller that already owns a SymbolTable and
// scanned bodies (e.g. a future incremental reload) can skip straight to
// package explore.
package build

import (
	"fmt"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/scanner"
	"github.com/mangle-ground/ground/schema"
	"github.com/mangle-ground/ground/symtab"
)

// SymbolTable populates a fresh symtab.SymbolTable from domain and problem
// and freezes it. Predicates are marked static by a domain-wide scan of
// every action body's add/del effect lists, including When descendants.
func SymbolTable(domain ast.RawDomain, problem ast.RawProblem) (*symtab.SymbolTable, error) {
	table := symtab.New()
	for _, td := range domain.Types {
		if err := table.AddType(td.Type, td.Parent); err != nil {
			return nil, err
		}
	}
	for _, p := range domain.Predicates {
		if err := table.AddPredicate(p); err != nil {
			return nil, err
		}
	}
	for _, f := range domain.Functions {
		if err := table.AddFunction(f); err != nil {
			return nil, err
		}
	}
	for _, o := range problem.Objects {
		if _, err := table.AddObject(o.Name, o.Type); err != nil {
			return nil, err
		}
	}
	if err := table.Freeze(); err != nil {
		return nil, err
	}
	markStatic(table, domain)
	return table, nil
}

func markStatic(table *symtab.SymbolTable, domain ast.RawDomain) {
	dynamic := map[ast.PredicateSym]bool{}
	var walk func(ast.RawActionBody)
	walk = func(body ast.RawActionBody) {
		for _, sf := range body.EffAdd {
			dynamic[sf.Fact.Predicate] = true
		}
		for _, sf := range body.EffDel {
			dynamic[sf.Fact.Predicate] = true
		}
		for _, child := range body.Whens {
			walk(child)
		}
	}
	for _, body := range domain.ActionBodies {
		walk(body)
	}
	for _, p := range domain.Predicates {
		if !dynamic[p] {
			table.MarkStatic(p)
		}
	}
}

// Schemas scans and compiles every action body in actionBodies into a
// schema.ActionSchema forest, using scan to fold static predicates out of
// each body's precondition list. It returns the top-level schemas (Whens
// children are reachable only via ActionSchema.Whens, never included here
// directly) plus the parameter-index restriction scan folded out of each
// schema, keyed by schema so the caller can hand it to
// explore.Driver.SetRestriction.
func Schemas(scan *scanner.Scanner, actionBodies []ast.RawActionBody) ([]*schema.ActionSchema, map[*schema.ActionSchema]map[int][]int, error) {
	restrictions := map[*schema.ActionSchema]map[int][]int{}
	out := make([]*schema.ActionSchema, 0, len(actionBodies))
	for _, body := range actionBodies {
		folded, err := scan.Scan(body, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("build: scanning %s: %w", body.Name, err)
		}
		a, err := compileSchema(folded, schema.Normal, restrictions)
		if err != nil {
			return nil, nil, fmt.Errorf("build: compiling %s: %w", body.Name, err)
		}
		out = append(out, a)
	}
	return out, restrictions, nil
}

func compileSchema(folded scanner.FoldedBody, class schema.Classification, restrictions map[*schema.ActionSchema]map[int][]int) (*schema.ActionSchema, error) {
	body := folded.Source
	if body.Forall != nil && class == schema.Normal {
		class = schema.Forall
	}
	a := &schema.ActionSchema{
		Name:           body.Name,
		Class:          class,
		FixedTime:      body.FixedTime,
		ParameterTypes: folded.ParameterTypes,
		PreAdd:         folded.PreAdd,
		PreDel:         body.PreDel,
		EffAdd:         body.EffAdd,
		EffDel:         body.EffDel,
		NumPre:         body.NumPre,
		NumEff:         body.NumEff,
		Prefs:          body.Prefs,
		Ors:            body.Ors,
		Implies:        body.Implies,
	}
	restrictions[a] = folded.Restriction
	for _, childFolded := range folded.Whens {
		child, err := compileSchema(childFolded, schema.When, restrictions)
		if err != nil {
			return nil, err
		}
		a.Whens = append(a.Whens, child)
	}
	return a, nil
}
