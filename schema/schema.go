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

// Package schema holds the lifted ActionSchema representation and the
// ground Instantiation records the engine in package ground produces from
// it, along with the MergedPredicate/PartPredicate machinery that turns
// invariant-analysis output into fact groups.
package schema

import "github.com/mangle-ground/ground/ast"

// Classification tags what role a schema plays. Modeled as a string-backed
// enum rather than a type hierarchy: the three cases differ only in
// whether EraseNoops actually removes anything and how children expand,
// which reads more clearly as a switch than as subclassing.
type Classification string

const (
	// Normal is an ordinary action schema.
	Normal Classification = "NORMAL"
	// When marks a schema as a conditional-effect child of a parent schema.
	When Classification = "WHEN"
	// Forall marks a schema produced by unfolding a forall quantifier.
	Forall Classification = "FORALL"
)

// ActionSchema is a lifted action: typed parameters, split pre/add/del
// fact lists, numeric pre/effects, preferences, disjunctions, implications
// and owned conditional-effect children.
//
// An ActionSchema is mutable only during construction and scanning; once
// instantiation begins (see package ground), only Instantiations and the
// countdown matrices are mutated, and those only ever grow or shrink
// through the documented append/erase operations.
type ActionSchema struct {
	Name           string
	DomainName     string // non-owning handle, an index key into the domain arena
	Label          int    // opaque pass-through; no consumer in this core (spec §9)
	Class          Classification
	FixedTime      *float64
	ParameterTypes []ast.TypeSym

	PreAdd, PreDel []ast.ScopedFact
	EffAdd, EffDel []ast.ScopedFact
	NumPre         []ast.NumericCondition
	NumEff         []ast.NumericEffect
	Prefs          []ast.Preference
	Ors, Implies   []ast.ScopedFormulaPair

	// Whens is exclusively owned by this schema: cascade destruction in
	// the original C++ becomes "nothing else holds a reference" in Go,
	// since nothing outside the parent ever stores a *ActionSchema that
	// isn't reachable from some domain's schema list.
	Whens []*ActionSchema

	instantiations []Instantiation

	// preByMaxPar[m] holds every non-unary PreAdd/PreDel fact whose
	// matching becomes decidable exactly when parameter m is bound, i.e.
	// m is the maximum schema-parameter index the fact references.
	preByMaxPar [][]BucketedFact
	// preconditionCount[parNo][objNo] counts how many still-unsatisfied
	// unary preconditions stand between objNo and admission into
	// validArguments[parNo]. Append-only: it only ever counts down to
	// zero, never back up.
	preconditionCount [][]int
	validArguments    [][]int
}

// ParameterCount returns the number of parameters this schema binds.
func (a *ActionSchema) ParameterCount() int { return len(a.ParameterTypes) }

// Instantiations returns the ground records logged so far.
func (a *ActionSchema) Instantiations() []Instantiation { return a.instantiations }

// Instantiation is a fully ground record: a binding tuple plus compacted
// ground atom-code lists for the four pre/add/del classes, plus numeric
// terms and the derived noop/constant-only flags.
type Instantiation struct {
	Params []int

	PreAddAtoms, PreDelAtoms []int
	EffAddAtoms, EffDelAtoms []int

	NumPre []GroundNumericCondition
	NumEff []GroundNumericEffect

	// Noop is true when EffAddAtoms and EffDelAtoms hold the same codes
	// (order ignored, multiplicities compared; see EqualAtomSets), i.e.
	// the action's ground effect is a no-op.
	Noop bool
	// ConstantOnly is true when every atom referenced by this
	// instantiation is statically determined (true or false regardless of
	// state), so the instantiation can never change behavior at search
	// time.
	ConstantOnly bool

	// Children holds the surviving conditional-effect instantiations
	// expanded under this parent binding (spec §4.3, "Conditional-effect
	// expansion").
	Children []ChildInstantiation
}

// GroundNumericCondition is a NumericCondition with its fluent references
// resolved to ground argument tuples.
type GroundNumericCondition struct {
	Op          ast.NumericOp
	Left, Right float64
}

// GroundNumericEffect is a NumericEffect with its target fluent resolved to
// a ground argument tuple.
type GroundNumericEffect struct {
	Op     ast.NumericOp
	Target ast.NumericFunctionSym
	Args   []int
	Value  float64
}

// ChildInstantiation pairs the when-schema that produced it with its own
// ground instantiation, so a caller can tell which conditional effect body
// is responsible for which ground effect.
type ChildInstantiation struct {
	Schema *ActionSchema
	Inst   Instantiation
}

// BucketedFact is a non-unary precondition fact together with which side of
// the precondition list it came from, as sorted into preByMaxPar.
type BucketedFact struct {
	Fact  ast.ScopedFact
	IsDel bool
}
