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

// Package explore implements the ExploreStep driver: it owns the two
// global atom tables (trueHeads, fluentHeads) the rest of the engine reads,
// seeds every ActionSchema's countdown state, runs package ground's
// Instantiator over the schema forest in children-before-parents order, and
// assembles the ground-action view the search engine consumes (spec §4.5,
// §6).
package explore

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"go.uber.org/multierr"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/atomset"
	"github.com/mangle-ground/ground/ground"
	"github.com/mangle-ground/ground/groundopts"
	"github.com/mangle-ground/ground/groundstats"
	"github.com/mangle-ground/ground/numeric"
	"github.com/mangle-ground/ground/scanner"
	"github.com/mangle-ground/ground/schema"
	"github.com/mangle-ground/ground/symtab"
)

// GroundAction is one fully resolved ground action as exposed to the
// search engine: a schema name, its bound parameter tuple, compacted
// pre/add/del atom-code lists, ground numeric terms, and the derived/timed
// tags spec §6 calls out.
type GroundAction struct {
	Schema *schema.ActionSchema
	Name   string
	Params []int

	PreAddAtoms, PreDelAtoms []int
	EffAddAtoms, EffDelAtoms []int
	NumPre                   []schema.GroundNumericCondition
	NumEff                   []schema.GroundNumericEffect

	// Derived is true for actions produced from a WHEN or FORALL schema
	// rather than one the domain author wrote directly.
	Derived bool
	Timed   bool
	Time    *float64

	// Children holds the surviving conditional-effect instantiations that
	// fired under this exact parameter binding.
	Children []schema.ChildInstantiation
}

// Result is everything ExploreStep hands the search engine: the ordered
// ground-action list, a name index for diagnostics, the initial-state
// atom set, and the fact-group partitioning (spec §6 (a)-(d)).
type Result struct {
	GroundActions []GroundAction
	ByName        map[string][]GroundAction
	InitialState  *atomset.Set
	FactGroups    [][]int
	Stats         groundstats.Stats
}

// Driver is ExploreStep: it holds the process-wide read-only tables the
// scanner and engine consult, and coordinates one grounding run. A Driver
// is built once per problem instance; nothing about it is safe to reuse
// across different object universes.
type Driver struct {
	table       *symtab.SymbolTable
	trueHeads   *atomset.Set
	fluentHeads *atomset.Set
	factGroups  [][]int
	groupIndex  *atomset.GroupIndex

	opts   groundopts.Options
	fluent numeric.FluentLookup

	// restrictions maps a schema to the parameter-index restriction the
	// ConstantPredicateScanner folded out of its body, if any. Populated by
	// the caller via SetRestriction after scanning, before Run.
	restrictions map[*schema.ActionSchema]map[int][]int

	engine *ground.Instantiator
}

// New builds a Driver. initialTrue lists every ground fact true in the
// problem's initial state; predicates lists every predicate declared in
// the domain, used to decide fluentHeads membership (anything not marked
// static in table is a fluent). merged is the domain's MergedPredicate set,
// used to build the fact-group partitioning and its lookup index.
func New(table *symtab.SymbolTable, initialTrue []ast.SymbolicFact, predicates []ast.PredicateSym, merged []schema.MergedPredicate, opts groundopts.Options, fluent numeric.FluentLookup) (*Driver, error) {
	trueHeads := atomset.New()
	for _, fact := range initialTrue {
		if !fact.IsGround() {
			return nil, fmt.Errorf("explore: initial fact %v is not ground", fact)
		}
		args, err := ast.ApplyBinding(fact, nil)
		if err != nil {
			return nil, err
		}
		code, err := table.AtomCode(fact.Predicate, args)
		if err != nil {
			return nil, fmt.Errorf("explore: initial fact %v: %w", fact, err)
		}
		trueHeads.Add(code)
	}

	fluentHeads, err := buildFluentHeads(table, predicates)
	if err != nil {
		return nil, err
	}

	groups, groupIdx, err := buildFactGroups(table, merged)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		table:        table,
		trueHeads:    trueHeads,
		fluentHeads:  fluentHeads,
		factGroups:   groups,
		groupIndex:   groupIdx,
		opts:         opts,
		fluent:       fluent,
		restrictions: map[*schema.ActionSchema]map[int][]int{},
	}
	d.engine = ground.New(table, trueHeads, fluentHeads, groupIdx, opts, fluent)
	return d, nil
}

// buildFluentHeads marks every ground atom of a non-static predicate as a
// fluent head. This materializes the full fact range of each non-static
// predicate rather than testing membership analytically; fine for the
// object universes the engine targets, and it keeps package ground's
// Instantiator working against the same plain atomset.Set it uses for
// trueHeads instead of a second code path.
func buildFluentHeads(table *symtab.SymbolTable, predicates []ast.PredicateSym) (*atomset.Set, error) {
	set := atomset.New()
	for _, p := range predicates {
		if table.IsStatic(p) {
			continue
		}
		r, err := table.FactRange(p)
		if err != nil {
			return nil, fmt.Errorf("explore: predicate %v: %w", p, err)
		}
		upper := r.Upper(p, table.ObjectCount())
		for c := r.Lower; c < upper; c++ {
			set.Add(c)
		}
	}
	return set, nil
}

func buildFactGroups(table *symtab.SymbolTable, merged []schema.MergedPredicate) ([][]int, *atomset.GroupIndex, error) {
	var groups [][]int
	for _, mp := range merged {
		gs, err := mp.GetFactGroups(table, table.ObjectCount())
		if err != nil {
			return nil, nil, fmt.Errorf("explore: merged predicate %v: %w", mp, err)
		}
		groups = append(groups, gs...)
	}
	return groups, atomset.NewGroupIndex(groups), nil
}

// NewScanner returns a ConstantPredicateScanner wired to this driver's
// symbol table and initial-state truth, ready to fold static predicates out
// of a schema body before InitActionData runs.
func (d *Driver) NewScanner() *scanner.Scanner {
	return scanner.New(d.table, d.table.IsStatic, d.holds)
}

func (d *Driver) holds(pred ast.PredicateSym, args []int) bool {
	code, err := d.table.AtomCode(pred, args)
	if err != nil {
		return false
	}
	return d.trueHeads.Contains(code)
}

// SetRestriction records the parameter-index restriction
// scanner.FoldedBody.Restriction produced for a, so InitActionData honors
// it when seeding validArguments.
func (d *Driver) SetRestriction(a *schema.ActionSchema, restriction map[int][]int) {
	d.restrictions[a] = restriction
}

// InitActionData sizes a's countdown state and seeds preconditionCount for
// every (parNo, objNo) pair, decrementing once per satisfied unary
// precondition and leaving objects ruled out by a's folded restriction at
// their full, never-zero count. It is the sole caller of InitCountdown,
// SetUnaryPreconditionCount and DecreasePreconditionCountdown, mirroring
// the original ExploreStep::initActionData's privileged access.
func (d *Driver) InitActionData(a *schema.ActionSchema) error {
	objectCount := d.table.ObjectCount()
	a.InitCountdown(objectCount)

	restriction := d.restrictions[a]
	for parNo, typ := range a.ParameterTypes {
		var allowed map[int]bool
		if r, ok := restriction[parNo]; ok {
			allowed = make(map[int]bool, len(r))
			for _, o := range r {
				allowed[o] = true
			}
		}
		unary := unaryFacts(a, parNo)
		for _, o := range d.table.ObjectsOfType(typ) {
			if allowed != nil && !allowed[o] {
				// Leave at its zero-value count (0) would wrongly admit it;
				// seed with a count no sequence of decrements can bring to
				// zero, so it is never admitted.
				a.SetUnaryPreconditionCount(parNo, o, math.MaxInt)
				continue
			}
			a.SetUnaryPreconditionCount(parNo, o, len(unary))
			for _, uf := range unary {
				code, err := d.table.AtomCode(uf.fact.Predicate, []int{o})
				if err != nil {
					return fmt.Errorf("explore: schema %s: %w", a.Name, err)
				}
				if matchDirect(d.trueHeads, d.fluentHeads, code, !uf.isDel) {
					a.DecreasePreconditionCountdown(parNo, o)
				}
			}
		}
	}
	return nil
}

type unaryFact struct {
	fact  ast.SymbolicFact
	isDel bool
}

// unaryFacts collects the PreAdd/PreDel facts of a that reference exactly
// parameter parNo and nothing else.
func unaryFacts(a *schema.ActionSchema, parNo int) []unaryFact {
	var out []unaryFact
	collect := func(facts []ast.ScopedFact, isDel bool) {
		for _, sf := range facts {
			if len(sf.Fact.Bindings) != 1 {
				continue
			}
			b := sf.Fact.Bindings[0]
			if b.IsParam && b.ParamIndex == parNo {
				out = append(out, unaryFact{fact: sf.Fact, isDel: isDel})
			}
		}
	}
	collect(a.PreAdd, false)
	collect(a.PreDel, true)
	return out
}

// matchDirect duplicates package ground's reachability test in miniature:
// it seeds the one-time unary countdown, while the Instantiator's own copy
// runs per candidate binding during enumeration proper.
func matchDirect(trueHeads, fluentHeads *atomset.Set, code int, wantTrue bool) bool {
	if wantTrue {
		return trueHeads.Contains(code) || fluentHeads.Contains(code)
	}
	return !trueHeads.Contains(code) || fluentHeads.Contains(code)
}

// Run instantiates every schema in roots (and, recursively, each schema's
// Whens children, children first) and assembles the combined Result.
// Engine-phase errors terminate only the schema that produced them; Run
// aggregates every such error with multierr and keeps grounding the
// remaining schemas, per spec §7's propagation policy.
func (d *Driver) Run(roots []*schema.ActionSchema) (Result, error) {
	var stats groundstats.Stats
	var errs error
	for _, a := range roots {
		st, err := d.instantiateTree(a)
		stats.Schemas = append(stats.Schemas, st...)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	var actions []GroundAction
	for _, a := range roots {
		d.collect(a, &actions)
	}
	byName := make(map[string][]GroundAction, len(actions))
	for _, act := range actions {
		byName[act.Name] = append(byName[act.Name], act)
	}

	glog.V(1).Infof("explore: grounded %d schemas into %d ground actions", len(roots), len(actions))
	return Result{
		GroundActions: actions,
		ByName:        byName,
		InitialState:  d.trueHeads,
		FactGroups:    d.factGroups,
		Stats:         stats,
	}, errs
}

func (d *Driver) instantiateTree(a *schema.ActionSchema) ([]groundstats.SchemaStats, error) {
	var all []groundstats.SchemaStats
	var errs error
	for _, child := range a.Whens {
		childStats, err := d.instantiateTree(child)
		all = append(all, childStats...)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := d.InitActionData(a); err != nil {
		return all, multierr.Append(errs, err)
	}
	st, err := d.engine.Instantiate(a)
	st.MaxOperators = maxOperators(a, d.table.ObjectCount())
	all = append(all, st)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	if st.EmptyGroundSet {
		glog.Warningf("explore: schema %s produced zero ground actions", a.Name)
	}
	return all, errs
}

// maxOperators recovers the original MIPS source's Action::getMaxOperators:
// for each object, how many of this schema's surviving instantiations bind
// it at some parameter position. The search engine uses this to pre-size
// per-object operator tables (SPEC_FULL §5).
func maxOperators(a *schema.ActionSchema, objectCount int) []int {
	counts := make([]int, objectCount)
	for _, inst := range a.Instantiations() {
		seen := make(map[int]bool, len(inst.Params))
		for _, o := range inst.Params {
			if seen[o] {
				continue
			}
			seen[o] = true
			counts[o]++
		}
	}
	return counts
}

func (d *Driver) collect(a *schema.ActionSchema, out *[]GroundAction) {
	for _, inst := range a.Instantiations() {
		*out = append(*out, GroundAction{
			Schema:       a,
			Name:         a.Name,
			Params:       inst.Params,
			PreAddAtoms:  inst.PreAddAtoms,
			PreDelAtoms:  inst.PreDelAtoms,
			EffAddAtoms:  inst.EffAddAtoms,
			EffDelAtoms:  inst.EffDelAtoms,
			NumPre:       inst.NumPre,
			NumEff:       inst.NumEff,
			Derived:      a.Class != schema.Normal,
			Timed:        a.FixedTime != nil,
			Time:         a.FixedTime,
			Children:     inst.Children,
		})
	}
	for _, child := range a.Whens {
		d.collect(child, out)
	}
}
