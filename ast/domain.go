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

package ast

// SymbolicTree is the parsed representation handed to the engine by the
// surface-syntax parser (an external collaborator, see package doc of
// ground/explore). It is intentionally a thin, already-typed tree: the
// grammar and lexing live entirely outside this module.
type SymbolicTree struct {
	Domain  RawDomain
	Problem RawProblem
}

// RawDomain is the parser's view of a domain definition, before any
// ActionSchema objects are constructed.
type RawDomain struct {
	Name         string
	Predicates   []PredicateSym
	Functions    []NumericFunctionSym
	Types        []TypeDecl
	ActionBodies []RawActionBody
}

// TypeDecl declares a type and its immediate parent in the type DAG.
// An empty Parent means the type is a direct child of ObjectTop.
type TypeDecl struct {
	Type   TypeSym
	Parent TypeSym
}

// RawActionBody is the not-yet-scanned body of a single action schema, as
// produced by the parser. ConstantPredicateScanner and the ActionSchema
// constructor consume this to build the engine-internal representation.
type RawActionBody struct {
	Name           string
	ParameterTypes []TypeSym
	PreAdd, PreDel []ScopedFact
	EffAdd, EffDel []ScopedFact
	NumPre         []NumericCondition
	NumEff         []NumericEffect
	Prefs          []Preference
	Ors, Implies   []ScopedFormulaPair
	// Whens holds one raw body per conditional-effect child. When bodies
	// may nest at any depth; ConstantPredicateScanner rejects only a Forall
	// body nested inside another Forall body.
	Whens []RawActionBody
	// Forall, if non-nil, names the type the body additionally quantifies
	// over; this extends ParameterTypes by exactly one slot, consumed by
	// ConstantPredicateScanner's one-layer-of-forall support.
	Forall    *TypeSym
	FixedTime *float64
}

// RawProblem is the parser's view of a problem definition: the concrete
// object universe and the initial-state literals.
type RawProblem struct {
	Objects      []Object
	InitTrue     []SymbolicFact
	InitFalse    []SymbolicFact
	InitFluents  []NumericFluentInit
	TimedInitial []TimedLiteral
}

// NumericFluentInit gives the initial value of a ground numeric fluent.
type NumericFluentInit struct {
	Function NumericFunctionSym
	Args     []int
	Value    float64
}

// TimedLiteral is a fact that becomes true (or false) at a fixed time,
// driving the Timed/FixedTime tagging on the actions it triggers.
type TimedLiteral struct {
	Fact SymbolicFact
	Time float64
	Add  bool
}
