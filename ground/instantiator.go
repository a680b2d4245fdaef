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

// Package ground implements the Instantiator: the combinatorial core that
// turns one lifted ActionSchema, already fitted with a countdown state by
// package explore, into the ground Instantiation records schema.ActionSchema
// logs. This is the component spec §1 calls out as the hard part and spec §2
// weights heaviest (25% of the system).
//
// The enumeration walks schema parameters in increasing index order,
// admitting only objects schema.ActionSchema.GetValidArguments already
// reports valid for that slot (the unary-precondition countdown, maintained
// by the driver), then checking every non-unary precondition fact whose
// matching becomes decidable at that parameter (GetPreconditionsByMaxPar)
// before recursing deeper. This mirrors the original C++ instantiate loop's
// early-prune structure: a binding that fails a fact check at parameter m
// never reaches parameter m+1.
package ground

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/atomset"
	"github.com/mangle-ground/ground/groundopts"
	"github.com/mangle-ground/ground/groundstats"
	"github.com/mangle-ground/ground/numeric"
	"github.com/mangle-ground/ground/schema"
	"github.com/mangle-ground/ground/symtab"
)

// ErrMaxGroundActions is returned (wrapped with schema context) when a
// schema's surviving instantiation count would exceed
// groundopts.Options.MaxGroundActions.
var ErrMaxGroundActions = errors.New("ground: schema exceeded max ground actions")

// Instantiator grounds ActionSchemas against a fixed object universe and a
// fixed reachability picture of the problem's atoms. One Instantiator is
// shared across every schema in a domain; it holds no schema-specific
// state itself; all mutable state lives on the schema.ActionSchema being
// grounded.
type Instantiator struct {
	table *symtab.SymbolTable

	// trueHeads is the set of ground atoms true in the initial state.
	trueHeads *atomset.Set
	// fluentHeads is the set of ground atoms some schema's effect list can
	// toggle; an atom outside both sets is statically false forever.
	fluentHeads *atomset.Set
	// groups indexes the domain's MergedPredicate fact groups, giving
	// factMatches a mutex-aware fast path before falling back to direct
	// trueHeads/fluentHeads membership (spec §4.3 step 2).
	groups *atomset.GroupIndex

	opts   groundopts.Options
	fluent numeric.FluentLookup
}

// New returns an Instantiator. trueHeads and fluentHeads are built by the
// driver from the problem's initial state and the domain's schemas before
// any schema is instantiated; groups may be nil if the domain has no
// MergedPredicates, in which case every fact check uses the direct path.
func New(table *symtab.SymbolTable, trueHeads, fluentHeads *atomset.Set, groups *atomset.GroupIndex, opts groundopts.Options, fluent numeric.FluentLookup) *Instantiator {
	return &Instantiator{
		table:       table,
		trueHeads:   trueHeads,
		fluentHeads: fluentHeads,
		groups:      groups,
		opts:        opts,
		fluent:      fluent,
	}
}

// Instantiate grounds a, logging every surviving Instantiation on a itself
// and returning summary statistics. Callers must instantiate a's Whens
// children before calling Instantiate on a: the conditional-effect
// expansion step reads each child's already-logged Instantiations to find
// the ones sharing a's parameter prefix, rather than re-enumerating them.
func (in *Instantiator) Instantiate(a *schema.ActionSchema) (groundstats.SchemaStats, error) {
	glog.V(2).Infof("ground: instantiating schema %s (%d parameters)", a.Name, a.ParameterCount())

	if err := in.bind(a, nil); err != nil {
		return groundstats.SchemaStats{SchemaName: a.Name}, fmt.Errorf("ground: schema %s: %w", a.Name, err)
	}

	stats := groundstats.SchemaStats{SchemaName: a.Name}
	stats.DuplicatesRemoved = a.EraseDuplicates()
	stats.NoopsRemoved = a.EraseNoops()
	if in.opts.EraseConstants {
		stats.ConstantsRemoved = a.EraseConstants()
	}
	stats.Emitted = len(a.Instantiations())
	stats.EmptyGroundSet = stats.Emitted == 0

	glog.V(1).Infof("ground: schema %s emitted %d instantiations (dup=%d noop=%d const=%d)",
		a.Name, stats.Emitted, stats.DuplicatesRemoved, stats.NoopsRemoved, stats.ConstantsRemoved)
	return stats, nil
}

// bind recursively extends params by one object per call, pruning against
// GetValidArguments and the non-unary precondition facts decidable at the
// parameter just bound, until params is full and an Instantiation is
// emitted.
func (in *Instantiator) bind(a *schema.ActionSchema, params []int) error {
	parNo := len(params)
	if parNo == a.ParameterCount() {
		return in.emit(a, params)
	}
	for _, o := range a.GetValidArguments(parNo) {
		candidate := append(params, o)
		ok, err := in.matchFacts(a, candidate, parNo)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := in.bind(a, candidate); err != nil {
			return err
		}
		if in.opts.MaxGroundActions > 0 && len(a.Instantiations()) > in.opts.MaxGroundActions {
			return fmt.Errorf("%w (limit %d)", ErrMaxGroundActions, in.opts.MaxGroundActions)
		}
	}
	return nil
}

// matchFacts checks every non-unary precondition fact that becomes
// decidable now that parameter maxPar is bound.
func (in *Instantiator) matchFacts(a *schema.ActionSchema, params []int, maxPar int) (bool, error) {
	for _, bf := range a.GetPreconditionsByMaxPar(maxPar) {
		ok, err := in.factMatches(bf.Fact.Fact, params, !bf.IsDel)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// factMatches reports whether fact, ground under params, is consistent
// with wantTrue: for a PreAdd fact wantTrue is true (the atom must be
// reachably true); for a PreDel fact wantTrue is false (the atom must be
// reachably absent). "Reachably" means either actually holds in the
// initial state, or is a fluent the search may toggle before the action's
// preconditions are checked at plan time; grounding can't rule those out,
// only atoms that are neither.
func (in *Instantiator) factMatches(fact ast.SymbolicFact, params []int, wantTrue bool) (bool, error) {
	args, err := ast.ApplyBinding(fact, params)
	if err != nil {
		return false, err
	}
	code, err := in.table.AtomCode(fact.Predicate, args)
	if err != nil {
		return false, err
	}
	if group := in.groups.Group(code); group != nil {
		return in.matchViaGroup(code, group, wantTrue), nil
	}
	return in.matchDirect(code, wantTrue), nil
}

func (in *Instantiator) matchDirect(code int, wantTrue bool) bool {
	if wantTrue {
		return in.trueHeads.Contains(code) || in.fluentHeads.Contains(code)
	}
	return !in.trueHeads.Contains(code) || in.fluentHeads.Contains(code)
}

// matchViaGroup uses a MergedPredicate fact group's mutual-exclusion
// invariant (at most one member holds at a time) to short-circuit the
// check without touching trueHeads for every sibling: if some other
// member of the group is both currently true and never toggled by any
// schema, code is ruled out for good.
func (in *Instantiator) matchViaGroup(code int, group []int, wantTrue bool) bool {
	if in.fluentHeads.Contains(code) {
		return in.matchDirect(code, wantTrue)
	}
	if in.trueHeads.Contains(code) {
		return wantTrue
	}
	for _, sib := range group {
		if sib == code {
			continue
		}
		if in.trueHeads.Contains(sib) && !in.fluentHeads.Contains(sib) {
			return !wantTrue
		}
	}
	return in.matchDirect(code, wantTrue)
}

// emit resolves every fact/numeric list against the now-complete params,
// logs the Instantiation, and expands any When children sharing this
// prefix.
func (in *Instantiator) emit(a *schema.ActionSchema, params []int) error {
	p := append([]int(nil), params...)

	preAdd, err := in.atomCodes(a.PreAdd, p)
	if err != nil {
		return err
	}
	preDel, err := in.atomCodes(a.PreDel, p)
	if err != nil {
		return err
	}
	effAdd, err := in.atomCodes(a.EffAdd, p)
	if err != nil {
		return err
	}
	effDel, err := in.atomCodes(a.EffDel, p)
	if err != nil {
		return err
	}
	numPre, err := in.groundNumPre(a.NumPre, p)
	if err != nil {
		return err
	}
	numEff, err := in.groundNumEff(a.NumEff, p)
	if err != nil {
		return err
	}

	inst := schema.Instantiation{
		Params:       p,
		PreAddAtoms:  preAdd,
		PreDelAtoms:  preDel,
		EffAddAtoms:  effAdd,
		EffDelAtoms:  effDel,
		NumPre:       numPre,
		NumEff:       numEff,
		Noop:         schema.EqualAtomSets(effAdd, effDel),
		ConstantOnly: in.allStatic(preAdd) && in.allStatic(preDel) && in.allStatic(effAdd) && in.allStatic(effDel),
	}
	inst.Children = in.matchingChildren(a, p)
	a.LogInstantiation(inst)
	return nil
}

func (in *Instantiator) atomCodes(facts []ast.ScopedFact, params []int) ([]int, error) {
	codes := make([]int, 0, len(facts))
	for _, sf := range facts {
		args, err := ast.ApplyBinding(sf.Fact, params)
		if err != nil {
			return nil, err
		}
		code, err := in.table.AtomCode(sf.Fact.Predicate, args)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (in *Instantiator) groundNumPre(conds []ast.NumericCondition, params []int) ([]schema.GroundNumericCondition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]schema.GroundNumericCondition, 0, len(conds))
	for _, c := range conds {
		left, right, holds, err := numeric.GroundCondition(c, params, in.fluent)
		if err != nil {
			return nil, err
		}
		if !holds {
			continue
		}
		out = append(out, schema.GroundNumericCondition{Op: c.Op, Left: left, Right: right})
	}
	return out, nil
}

func (in *Instantiator) groundNumEff(effs []ast.NumericEffect, params []int) ([]schema.GroundNumericEffect, error) {
	if len(effs) == 0 {
		return nil, nil
	}
	out := make([]schema.GroundNumericEffect, 0, len(effs))
	for _, e := range effs {
		args, value, err := numeric.GroundEffect(e, params, in.fluent)
		if err != nil {
			return nil, err
		}
		out = append(out, schema.GroundNumericEffect{Op: e.Op, Target: e.Target.Function, Args: args, Value: value})
	}
	return out, nil
}

// allStatic reports whether every atom in codes names a predicate marked
// static in the symbol table. Decode failures are logged and treated as
// "not static," since misclassifying an instantiation as constant-only
// when it isn't would silently drop a live action, while the reverse only
// costs a missed optimization.
func (in *Instantiator) allStatic(codes []int) bool {
	for _, c := range codes {
		pred, _, err := in.table.DecodeAtom(c)
		if err != nil {
			glog.Warningf("ground: DecodeAtom(%d): %v", c, err)
			return false
		}
		if !in.table.IsStatic(pred) {
			return false
		}
	}
	return true
}

// matchingChildren returns, for each of a's When schemas, every already
// logged Instantiation whose parameter tuple extends parentParams.
func (in *Instantiator) matchingChildren(a *schema.ActionSchema, parentParams []int) []schema.ChildInstantiation {
	var out []schema.ChildInstantiation
	for _, child := range a.Whens {
		for _, ci := range child.Instantiations() {
			if !hasPrefix(ci.Params, parentParams) {
				continue
			}
			out = append(out, schema.ChildInstantiation{Schema: child, Inst: ci})
		}
	}
	return out
}

func hasPrefix(params, prefix []int) bool {
	if len(params) < len(prefix) {
		return false
	}
	for i, v := range prefix {
		if params[i] != v {
			return false
		}
	}
	return true
}
