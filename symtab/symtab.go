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

// Package symtab owns predicates, typed objects, constants and numeric
// functions, and assigns the stable integer codes objects, predicates and
// ground atoms are numbered by. The symbol table outlives every
// ActionSchema and Instantiation built on top of it, and is immutable
// after Freeze.
package symtab

import (
	"fmt"
	"sort"

	"bitbucket.org/creachadair/stringset"
	"github.com/mangle-ground/ground/ast"
)

// SymbolTable owns the domain's predicates, objects, types and numeric
// functions and assigns atom codes. It is built up via the Add* methods
// and becomes read-only once Freeze is called; every atom-code query is an
// error before Freeze, since fact ranges depend on the final object count.
type SymbolTable struct {
	predicates map[ast.PredicateSym]bool
	functions  map[ast.NumericFunctionSym]bool
	objects    []ast.Object
	objectByName map[string]int
	types      map[ast.TypeSym]ast.TypeSym // child -> parent
	typeMembers map[ast.TypeSym][]int      // type -> object IDs (direct members only)

	// staticPredicates is populated by MarkStatic (normally driven by
	// package build's domain-wide effect scan): predicates that never
	// appear in any schema's add/del effect list.
	staticPredicates stringset.Set

	frozen    bool
	factLower map[ast.PredicateSym]int
	nextCode  int
}

// New returns an empty, unfrozen SymbolTable.
func New() *SymbolTable {
	return &SymbolTable{
		predicates:   map[ast.PredicateSym]bool{},
		functions:    map[ast.NumericFunctionSym]bool{},
		objectByName: map[string]int{},
		types:        map[ast.TypeSym]ast.TypeSym{},
		typeMembers:  map[ast.TypeSym][]int{},
		staticPredicates: stringset.New(),
	}
}

// AddPredicate registers a predicate symbol. Idempotent.
func (t *SymbolTable) AddPredicate(p ast.PredicateSym) error {
	if t.frozen {
		return fmt.Errorf("symtab: cannot add predicate %v after freeze", p)
	}
	t.predicates[p] = true
	return nil
}

// AddFunction registers a numeric function symbol. Idempotent.
func (t *SymbolTable) AddFunction(f ast.NumericFunctionSym) error {
	if t.frozen {
		return fmt.Errorf("symtab: cannot add function %v after freeze", f)
	}
	t.functions[f] = true
	return nil
}

// AddType registers that typ's immediate parent is parent. An empty parent
// name means typ is a direct child of ast.ObjectTop.
func (t *SymbolTable) AddType(typ, parent ast.TypeSym) error {
	if t.frozen {
		return fmt.Errorf("symtab: cannot add type %v after freeze", typ)
	}
	if parent.Name == "" {
		parent = ast.ObjectTop
	}
	t.types[typ] = parent
	return nil
}

// AddObject registers an object, assigning it the next sequential ID.
// Objects must be added in the order their final IDs should take.
func (t *SymbolTable) AddObject(name string, typ ast.TypeSym) (ast.Object, error) {
	if t.frozen {
		return ast.Object{}, fmt.Errorf("symtab: cannot add object %q after freeze", name)
	}
	if _, exists := t.objectByName[name]; exists {
		return ast.Object{}, fmt.Errorf("symtab: duplicate object %q", name)
	}
	obj := ast.Object{ID: len(t.objects), Name: name, Type: typ}
	t.objects = append(t.objects, obj)
	t.objectByName[name] = obj.ID
	for cur := typ; ; {
		t.typeMembers[cur] = append(t.typeMembers[cur], obj.ID)
		if cur == ast.ObjectTop {
			break
		}
		parent, ok := t.types[cur]
		if !ok {
			t.typeMembers[ast.ObjectTop] = append(t.typeMembers[ast.ObjectTop], obj.ID)
			break
		}
		cur = parent
	}
	return obj, nil
}

// MarkStatic records that pred never appears in any schema's add/del
// effect list domain-wide, so ConstantPredicateScanner may fold references
// to it into parameter-type restrictions instead of runtime checks.
func (t *SymbolTable) MarkStatic(pred ast.PredicateSym) {
	t.staticPredicates.Add(pred.String())
}

// IsStatic reports whether pred was marked static.
func (t *SymbolTable) IsStatic(pred ast.PredicateSym) bool {
	return t.staticPredicates.Contains(pred.String())
}

// ObjectCount returns O, the size of the frozen object universe.
func (t *SymbolTable) ObjectCount() int { return len(t.objects) }

// Objects returns every registered object, ordered by ID.
func (t *SymbolTable) Objects() []ast.Object { return t.objects }

// ObjectsOfType returns the IDs of every object whose type is typ or a
// descendant of typ in the type DAG.
func (t *SymbolTable) ObjectsOfType(typ ast.TypeSym) []int {
	return append([]int(nil), t.typeMembers[typ]...)
}

// Freeze assigns a contiguous atom-code range to every registered
// predicate in deterministic (name, arity) order and forbids further
// structural mutation. It must be called exactly once, after every
// predicate, object and type has been registered.
func (t *SymbolTable) Freeze() error {
	if t.frozen {
		return fmt.Errorf("symtab: already frozen")
	}
	preds := make([]ast.PredicateSym, 0, len(t.predicates))
	for p := range t.predicates {
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Name != preds[j].Name {
			return preds[i].Name < preds[j].Name
		}
		return preds[i].Arity < preds[j].Arity
	})
	t.factLower = make(map[ast.PredicateSym]int, len(preds))
	code := 0
	o := len(t.objects)
	for _, p := range preds {
		t.factLower[p] = code
		code += intPow(o, p.Arity)
	}
	t.nextCode = code
	t.frozen = true
	return nil
}

// FactRange returns the [Lower, Upper) ground atom-code range for pred.
// Must be called after Freeze.
func (t *SymbolTable) FactRange(pred ast.PredicateSym) (ast.FactRange, error) {
	if !t.frozen {
		return ast.FactRange{}, fmt.Errorf("symtab: FactRange called before Freeze")
	}
	lower, ok := t.factLower[pred]
	if !ok {
		return ast.FactRange{}, fmt.Errorf("symtab: unknown predicate %v", pred)
	}
	return ast.FactRange{Lower: lower}, nil
}

// AtomCode computes the ground atom code for pred applied to objs, using
// the invariant L(p) + sum(o_i * O^(k-1-i)).
func (t *SymbolTable) AtomCode(pred ast.PredicateSym, objs []int) (int, error) {
	if len(objs) != pred.Arity {
		return 0, fmt.Errorf("symtab: %v expects %d arguments, got %d", pred, pred.Arity, len(objs))
	}
	r, err := t.FactRange(pred)
	if err != nil {
		return 0, err
	}
	o := t.ObjectCount()
	code := r.Lower
	for i, obj := range objs {
		code += obj * intPow(o, pred.Arity-1-i)
	}
	return code, nil
}

// DecodeAtom is the exact inverse of AtomCode: given a ground atom code, it
// returns the predicate and object-code tuple that produced it.
func (t *SymbolTable) DecodeAtom(code int) (ast.PredicateSym, []int, error) {
	if !t.frozen {
		return ast.PredicateSym{}, nil, fmt.Errorf("symtab: DecodeAtom called before Freeze")
	}
	var chosen ast.PredicateSym
	var lower int
	found := false
	for p, l := range t.factLower {
		if l <= code && (!found || l > lower) {
			chosen, lower, found = p, l, true
		}
	}
	if !found {
		return ast.PredicateSym{}, nil, fmt.Errorf("symtab: code %d out of range", code)
	}
	o := t.ObjectCount()
	rem := code - lower
	objs := make([]int, chosen.Arity)
	for i := chosen.Arity - 1; i >= 0; i-- {
		objs[i] = rem % o
		rem /= o
	}
	return chosen, objs, nil
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
