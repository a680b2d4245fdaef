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

// Package ast contains the lifted representation consumed by the
// grounding engine: typed objects, predicates, numeric functions and
// the symbolic facts and formulas that make up an action schema body.
//
// Objects are numbered [0..O) and predicates occupy a contiguous atom-code
// range assigned at symbol-table freeze (see package symtab). The ground
// atom of predicate p applied to tuple (o_0,...,o_k-1) has code
// L(p) + sum(o_i * O^(k-1-i)); every component in this module is written to
// preserve that invariant rather than recompute it independently.
package ast

import "fmt"

// TypeSym names a PDDL type. Types form a DAG via the parent chain recorded
// in symtab.TypeTable; TypeSym itself is just an interned name.
type TypeSym struct {
	Name string
}

func (t TypeSym) String() string { return t.Name }

// ObjectTop is the universal type every object is implicitly a member of.
var ObjectTop = TypeSym{"object"}

// Object is one member of the finite universe the engine grounds over.
// ID is the object's stable integer code, assigned at symbol-table freeze.
type Object struct {
	ID   int
	Name string
	Type TypeSym
}

func (o Object) String() string { return o.Name }

// PredicateSym identifies a predicate by name and arity. Two predicates
// with the same name but different arity are distinct symbols, matching
// the teacher's PredicateSym convention of treating (name, arity) as the key.
type PredicateSym struct {
	Name  string
	Arity int
}

func (p PredicateSym) String() string {
	return fmt.Sprintf("%s/%d", p.Name, p.Arity)
}

// FactRange is the contiguous ground atom-code range occupied by a predicate,
// computed at symbol-table freeze: Upper(O) = Lower + O^Arity.
type FactRange struct {
	Lower int
}

// Upper returns the exclusive upper bound of the fact range given an object
// count O.
func (r FactRange) Upper(pred PredicateSym, objectCount int) int {
	return r.Lower + intPow(objectCount, pred.Arity)
}

func intPow(base, exp int) int {
	if exp <= 0 {
		return 1
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// NumericFunctionSym identifies a numeric fluent function, e.g. fuel(truck).
type NumericFunctionSym struct {
	Name  string
	Arity int
}

func (f NumericFunctionSym) String() string {
	return fmt.Sprintf("%s/%d", f.Name, f.Arity)
}

// Binding is one argument slot of a SymbolicFact: either an unbound
// schema-parameter reference or a bound constant object code.
type Binding struct {
	// ParamIndex is valid when IsParam is true: the index into the owning
	// schema's parameter list this slot refers to.
	ParamIndex int
	// Const is valid when IsParam is false: a constant object code.
	Const int
	// IsParam discriminates the two cases above. A bool tag instead of an
	// interface keeps Binding a plain comparable value, which matters
	// because SymbolicFact.Bindings is hashed into instantiation keys.
	IsParam bool
}

// Param constructs a binding that refers to schema parameter i.
func Param(i int) Binding { return Binding{ParamIndex: i, IsParam: true} }

// Bound constructs a binding fixed to constant object code c.
func Bound(c int) Binding { return Binding{Const: c, IsParam: false} }

func (b Binding) String() string {
	if b.IsParam {
		return fmt.Sprintf("?%d", b.ParamIndex)
	}
	return fmt.Sprintf("#%d", b.Const)
}

// SymbolicFact is a predicate reference plus a parameter-binding vector.
// Immutable once emitted by the parser (or by ConstantPredicateScanner,
// which only ever drops facts from a list, never mutates one in place).
type SymbolicFact struct {
	Predicate PredicateSym
	Bindings  []Binding
}

func (f SymbolicFact) String() string {
	s := f.Predicate.Name
	for _, b := range f.Bindings {
		s += " " + b.String()
	}
	return s
}

// IsGround reports whether every binding is a constant.
func (f SymbolicFact) IsGround() bool {
	for _, b := range f.Bindings {
		if b.IsParam {
			return false
		}
	}
	return true
}

// ScopedFact pairs a SymbolicFact with the number of schema parameters that
// are live ("in scope") at the point the fact is evaluated. This is needed
// to evaluate facts nested inside a forall/when body correctly, since the
// body may reference parameters the enclosing schema does not declare yet.
type ScopedFact struct {
	LiveParamCount int
	Fact           SymbolicFact
}

// Formula is a boolean sub-formula tagged to a parameter-scope depth, used
// for 'or' and 'implies' bodies (spec: Disjunctions and implications).
type Formula interface {
	isFormula()
	String() string
}

// FactFormula lifts a SymbolicFact into a Formula leaf.
type FactFormula struct{ Fact SymbolicFact }

func (FactFormula) isFormula()        {}
func (f FactFormula) String() string  { return f.Fact.String() }

// NotFormula negates a sub-formula.
type NotFormula struct{ Inner Formula }

func (NotFormula) isFormula()       {}
func (f NotFormula) String() string { return "(not " + f.Inner.String() + ")" }

// AndFormula is a conjunction of sub-formulas.
type AndFormula struct{ Conjuncts []Formula }

func (AndFormula) isFormula() {}
func (f AndFormula) String() string {
	s := "(and"
	for _, c := range f.Conjuncts {
		s += " " + c.String()
	}
	return s + ")"
}

// ScopedFormulaPair is a (left, right) formula pair tagged to a scope depth,
// used for both 'or' (disjunction) and 'implies' vectors on an ActionSchema.
type ScopedFormulaPair struct {
	LiveParamCount int
	Left, Right    Formula
}

// Preference is a named sub-formula tagged to a scope depth.
type Preference struct {
	Name           string
	LiveParamCount int
	Body           Formula
}

// NumericOp enumerates the arithmetic relation or assignment a numeric
// condition/effect applies.
type NumericOp int

const (
	// OpLt is the less-than relation.
	OpLt NumericOp = iota
	// OpLe is the less-than-or-equal relation.
	OpLe
	// OpEq is the equality relation.
	OpEq
	// OpAssign sets the fluent to a value (numeric effect only).
	OpAssign
	// OpIncrease adds a value to the fluent (numeric effect only).
	OpIncrease
	// OpDecrease subtracts a value from the fluent (numeric effect only).
	OpDecrease
)

// NumericExpr is an arithmetic expression over numeric fluents and
// constants, parameterized by schema-parameter bindings.
type NumericExpr interface {
	isNumericExpr()
	String() string
}

// NumericConst is a literal numeric value.
type NumericConst struct{ Value float64 }

func (NumericConst) isNumericExpr()     {}
func (e NumericConst) String() string   { return fmt.Sprintf("%v", e.Value) }

// NumericFluentRef refers to a numeric function applied to schema
// parameters (or bound constants), e.g. (fuel ?truck).
type NumericFluentRef struct {
	Function NumericFunctionSym
	Bindings []Binding
}

func (NumericFluentRef) isNumericExpr() {}
func (e NumericFluentRef) String() string {
	s := e.Function.Name
	for _, b := range e.Bindings {
		s += " " + b.String()
	}
	return s
}

// NumericBinOp combines two numeric expressions, e.g. (+ a b).
type NumericBinOp struct {
	Op          string // "+", "-", "*", "/"
	Left, Right NumericExpr
}

func (NumericBinOp) isNumericExpr() {}
func (e NumericBinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Left.String(), e.Right.String())
}

// NumericCondition is a numeric precondition: Left Op Right must hold.
type NumericCondition struct {
	Op          NumericOp
	Left, Right NumericExpr
}

// NumericEffect applies Op to the fluent named by Target using Value.
type NumericEffect struct {
	Op     NumericOp
	Target NumericFluentRef
	Value  NumericExpr
}
