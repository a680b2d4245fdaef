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

// Package groundstats holds the instantiation statistics the engine
// exposes to the search engine (spec §6): per-schema surviving/removed
// counts and the per-object operator upper bound recovered from the
// original MIPS source's Action::getMaxOperators (spec SPEC_FULL §5).
package groundstats

// SchemaStats summarizes one schema's grounding run.
type SchemaStats struct {
	SchemaName string

	Emitted           int
	DuplicatesRemoved int
	NoopsRemoved      int
	ConstantsRemoved  int

	// EmptyGroundSet is true when the schema survived scanning but
	// produced zero instantiations after the erase passes; non-fatal,
	// but worth surfacing (spec §7).
	EmptyGroundSet bool

	// MaxOperators[objNo] is an upper bound on how many ground actions of
	// this schema can bind objNo at any parameter position, used by the
	// search engine for pre-sizing (SPEC_FULL §5).
	MaxOperators []int
}

// Stats aggregates every schema's SchemaStats for one grounding run.
type Stats struct {
	Schemas []SchemaStats
}

// TotalGroundActions sums Emitted across every schema.
func (s Stats) TotalGroundActions() int {
	total := 0
	for _, sc := range s.Schemas {
		total += sc.Emitted
	}
	return total
}
