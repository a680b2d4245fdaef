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

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/schema"
)

// wireFile is the JSON shape groundc reads from disk: a hand-authored (or
// externally generated) stand-in for what a real PDDL front end would hand
// the engine via ast.FromParseTree or ast.FromProtoMessage. Every predicate
// argument is a string: "?N" names the Nth parameter of the enclosing
// action, anything else names a problem object by its "objects" entry.
type wireFile struct {
	Domain  wireDomain  `json:"domain"`
	Problem wireProblem `json:"problem"`
}

type wireDomain struct {
	Name       string           `json:"name"`
	Types      []wireTypeDecl   `json:"types"`
	Predicates []wirePredicate  `json:"predicates"`
	Functions  []wirePredicate  `json:"functions"`
	Actions    []wireAction     `json:"actions"`
	Merged     []wireMergedPred `json:"mergedPredicates"`
}

type wireTypeDecl struct {
	Type   string `json:"type"`
	Parent string `json:"parent"`
}

type wirePredicate struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}

type wireFact struct {
	Predicate string   `json:"predicate"`
	Args      []string `json:"args"`
}

type wireAction struct {
	Name       string       `json:"name"`
	Parameters []string     `json:"parameters"` // type names, positional
	Forall     string       `json:"forall"`     // optional extra type, one layer only
	PreAdd     []wireFact   `json:"preAdd"`
	PreDel     []wireFact   `json:"preDel"`
	EffAdd     []wireFact   `json:"effAdd"`
	EffDel     []wireFact   `json:"effDel"`
	Whens      []wireAction `json:"whens"`
}

type wireMergedPred struct {
	ParCount       int            `json:"parCount"`
	MergedParCount int            `json:"mergedParCount"`
	Parts          []wirePartPred `json:"parts"`
}

type wirePartPred struct {
	Predicate wirePredicate `json:"predicate"`
	NullState bool          `json:"nullState"`
	ParOrder  []int         `json:"parOrder"`
}

type wireProblem struct {
	Objects  []wireObject `json:"objects"`
	InitTrue []wireFact   `json:"initTrue"`
}

type wireObject struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// parseWireFile unmarshals a groundc input file and converts it into the
// engine's ast types plus the domain-wide merged-predicate list, resolving
// every "?N"/object-name argument against objNames.
func parseWireFile(data []byte) (ast.RawDomain, ast.RawProblem, []schema.MergedPredicate, error) {
	var wf wireFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return ast.RawDomain{}, ast.RawProblem{}, nil, fmt.Errorf("groundc: parsing input: %w", err)
	}

	objNames := make(map[string]int, len(wf.Problem.Objects))
	for i, o := range wf.Problem.Objects {
		objNames[o.Name] = i
	}

	problem := ast.RawProblem{}
	for _, o := range wf.Problem.Objects {
		problem.Objects = append(problem.Objects, ast.Object{ID: objNames[o.Name], Name: o.Name, Type: ast.TypeSym{Name: o.Type}})
	}
	for _, f := range wf.Problem.InitTrue {
		fact, err := convertFact(f, objNames)
		if err != nil {
			return ast.RawDomain{}, ast.RawProblem{}, nil, err
		}
		problem.InitTrue = append(problem.InitTrue, fact)
	}

	domain := ast.RawDomain{Name: wf.Domain.Name}
	for _, td := range wf.Domain.Types {
		domain.Types = append(domain.Types, ast.TypeDecl{Type: ast.TypeSym{Name: td.Type}, Parent: ast.TypeSym{Name: td.Parent}})
	}
	for _, p := range wf.Domain.Predicates {
		domain.Predicates = append(domain.Predicates, ast.PredicateSym{Name: p.Name, Arity: p.Arity})
	}
	for _, f := range wf.Domain.Functions {
		domain.Functions = append(domain.Functions, ast.NumericFunctionSym{Name: f.Name, Arity: f.Arity})
	}
	for _, wa := range wf.Domain.Actions {
		body, err := convertAction(wa, objNames)
		if err != nil {
			return ast.RawDomain{}, ast.RawProblem{}, nil, err
		}
		domain.ActionBodies = append(domain.ActionBodies, body)
	}

	var merged []schema.MergedPredicate
	for _, wm := range wf.Domain.Merged {
		if len(wm.Parts) == 0 {
			return ast.RawDomain{}, ast.RawProblem{}, nil, fmt.Errorf("groundc: mergedPredicates entry has no parts")
		}
		first := wm.Parts[0]
		initPred := ast.PredicateSym{Name: first.Predicate.Name, Arity: first.Predicate.Arity}
		pars := first.ParOrder[:wm.MergedParCount]
		mp := schema.NewMergedPredicate(initPred, pars)
		mp.MergedParCount = wm.MergedParCount
		for _, wp := range wm.Parts[1:] {
			mp.Push(ast.PredicateSym{Name: wp.Predicate.Name, Arity: wp.Predicate.Arity}, wp.ParOrder)
		}
		mp.MakeCanonical()
		merged = append(merged, mp)
	}

	return domain, problem, merged, nil
}

func convertAction(wa wireAction, objNames map[string]int) (ast.RawActionBody, error) {
	body := ast.RawActionBody{Name: wa.Name}
	for _, p := range wa.Parameters {
		body.ParameterTypes = append(body.ParameterTypes, ast.TypeSym{Name: p})
	}
	if wa.Forall != "" {
		t := ast.TypeSym{Name: wa.Forall}
		body.Forall = &t
	}
	scope := len(body.ParameterTypes)
	if body.Forall != nil {
		scope++
	}

	convertList := func(facts []wireFact) ([]ast.ScopedFact, error) {
		var out []ast.ScopedFact
		for _, f := range facts {
			fact, err := convertFact(f, objNames)
			if err != nil {
				return nil, err
			}
			out = append(out, ast.ScopedFact{LiveParamCount: scope, Fact: fact})
		}
		return out, nil
	}

	var err error
	if body.PreAdd, err = convertList(wa.PreAdd); err != nil {
		return ast.RawActionBody{}, err
	}
	if body.PreDel, err = convertList(wa.PreDel); err != nil {
		return ast.RawActionBody{}, err
	}
	if body.EffAdd, err = convertList(wa.EffAdd); err != nil {
		return ast.RawActionBody{}, err
	}
	if body.EffDel, err = convertList(wa.EffDel); err != nil {
		return ast.RawActionBody{}, err
	}
	for _, wc := range wa.Whens {
		child, err := convertAction(wc, objNames)
		if err != nil {
			return ast.RawActionBody{}, err
		}
		body.Whens = append(body.Whens, child)
	}
	return body, nil
}

// convertFact resolves every argument of f: "?N" becomes a parameter
// binding, anything else is looked up as an object name.
func convertFact(f wireFact, objNames map[string]int) (ast.SymbolicFact, error) {
	bindings := make([]ast.Binding, 0, len(f.Args))
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "?") {
			n, err := strconv.Atoi(arg[1:])
			if err != nil {
				return ast.SymbolicFact{}, fmt.Errorf("groundc: bad parameter reference %q: %w", arg, err)
			}
			bindings = append(bindings, ast.Param(n))
			continue
		}
		id, ok := objNames[arg]
		if !ok {
			return ast.SymbolicFact{}, fmt.Errorf("groundc: unknown object %q", arg)
		}
		bindings = append(bindings, ast.Bound(id))
	}
	return ast.SymbolicFact{
		Predicate: ast.PredicateSym{Name: f.Predicate, Arity: len(bindings)},
		Bindings:  bindings,
	}, nil
}
