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

// Package atomset holds the ground atom-code sets the grounding engine
// checks membership against: the initial-state true-atom set, the set of
// atoms any schema can toggle ("fluent heads"), and the fact-group index
// built from MergedPredicates that lets the Instantiator's precondition
// matching skip a linear scan.
//
// The shape is adapted from the teacher's indexed in-memory fact store
// (factstore.IndexedInMemoryStore): a flat map keyed by the thing being
// looked up, rather than a tree or bitset, because atom codes are already
// a dense small-integer space and insertion order never matters here.
package atomset

// Set is a simple, explicitly-owned set of ground atom codes. It stands in
// for the teacher's ReadOnlyFactStore/FactStore duality, narrowed to what
// the grounding engine needs: membership tests and bulk construction, no
// pattern-based GetFacts scan (every atom here is already fully ground).
type Set struct {
	codes map[int]bool
}

// New returns an empty Set.
func New() *Set { return &Set{codes: map[int]bool{}} }

// FromSlice returns a Set containing exactly the given codes.
func FromSlice(codes []int) *Set {
	s := New()
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add inserts code, returning true iff it was not already present.
func (s *Set) Add(code int) bool {
	if s.codes[code] {
		return false
	}
	s.codes[code] = true
	return true
}

// Contains reports whether code is a member.
func (s *Set) Contains(code int) bool {
	return s.codes[code]
}

// Len returns the number of distinct codes stored.
func (s *Set) Len() int { return len(s.codes) }

// Slice returns the stored codes in unspecified order.
func (s *Set) Slice() []int {
	out := make([]int, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	return out
}

// GroupIndex is the fact-group index built from a domain's MergedPredicate
// set: it maps every ground atom code appearing in some fact group to the
// group (the slice of sibling atom codes it is mutually exclusive with),
// so a precondition check can test "is this atom the unique true member of
// its group" in O(1) instead of rescanning every MergedPredicate.
type GroupIndex struct {
	groupOf map[int][]int
}

// NewGroupIndex builds an index over groups, a list of fact groups as
// returned by schema.MergedPredicate.GetFactGroups for every merged
// predicate in the domain.
func NewGroupIndex(groups [][]int) *GroupIndex {
	idx := &GroupIndex{groupOf: map[int][]int{}}
	for _, group := range groups {
		for _, code := range group {
			idx.groupOf[code] = group
		}
	}
	return idx
}

// Group returns the fact group containing code, or nil if code isn't part
// of any indexed merged predicate (the caller should fall back to a linear
// scan against the plain Set in that case, per spec §4.3 step 2).
func (g *GroupIndex) Group(code int) []int {
	if g == nil {
		return nil
	}
	return g.groupOf[code]
}
