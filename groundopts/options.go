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

// Package groundopts holds the grounding engine's process-wide options
// record. It is always passed explicitly into package explore's driver
// entry point, never retained as a package-level global (spec §9, "Global
// state").
package groundopts

// Options affects how the grounding engine instantiates a domain.
type Options struct {
	// EraseConstants controls whether the Instantiator's EraseConstants
	// pass runs. Spec §9 leaves "eraseConstants is conditionally omitted
	// in some paths" as an open question to be resolved explicitly at the
	// driver level; this field is that explicit choice.
	EraseConstants bool
	// MaxGroundActions aborts grounding a schema once its surviving
	// instantiation count would exceed this bound, if positive.
	MaxGroundActions int
	// StrictNesting is recorded here but not read by the scanner or the
	// engine: a forall nested inside another forall is always rejected
	// with scanner.ErrUnsupportedNesting, whatever this field holds, and
	// nested when bodies are accepted at any depth.
	StrictNesting bool
}

// Option configures Options.
type Option func(*Options)

// WithEraseConstants sets whether constant-only instantiations are erased.
func WithEraseConstants(on bool) Option {
	return func(o *Options) { o.EraseConstants = on }
}

// WithMaxGroundActions bounds the number of ground instantiations a single
// schema may produce before grounding that schema is aborted.
func WithMaxGroundActions(limit int) Option {
	return func(o *Options) { o.MaxGroundActions = limit }
}

// WithStrictNesting sets the StrictNesting field; it does not change how
// nesting is handled (see Options.StrictNesting).
func WithStrictNesting(on bool) Option {
	return func(o *Options) { o.StrictNesting = on }
}

// New builds an Options value from the given functional options. Defaults
// match the original MIPS source's behavior: EraseConstants on,
// StrictNesting on (nested forall is rejected either way), no
// ground-action cap.
func New(opts ...Option) Options {
	o := Options{EraseConstants: true, StrictNesting: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
