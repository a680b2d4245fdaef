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

import (
	"fmt"

	"github.com/antlr4-go/antlr/v4"
)

// TreeBuilder is implemented by the surface-syntax front end (an external
// collaborator, out of scope for this module per the grounding engine's
// remit). FromParseTree drives a TreeBuilder over an ANTLR parse tree so
// the engine never depends on grammar- or lexer-specific types.
type TreeBuilder interface {
	BuildDomain(root antlr.ParserRuleContext) (RawDomain, error)
	BuildProblem(root antlr.ParserRuleContext) (RawProblem, error)
}

// FromParseTree converts an ANTLR parse tree rooted at domainRoot/problemRoot
// into a SymbolicTree, using builder to interpret grammar-specific rule
// contexts. The engine's own packages never inspect domainRoot/problemRoot
// directly; they operate exclusively on the SymbolicTree this returns.
func FromParseTree(builder TreeBuilder, domainRoot, problemRoot antlr.ParserRuleContext) (SymbolicTree, error) {
	if domainRoot == nil || problemRoot == nil {
		return SymbolicTree{}, fmt.Errorf("ast: nil parse tree root")
	}
	domain, err := builder.BuildDomain(domainRoot)
	if err != nil {
		return SymbolicTree{}, fmt.Errorf("ast: building domain: %w", err)
	}
	problem, err := builder.BuildProblem(problemRoot)
	if err != nil {
		return SymbolicTree{}, fmt.Errorf("ast: building problem: %w", err)
	}
	return SymbolicTree{Domain: domain, Problem: problem}, nil
}
