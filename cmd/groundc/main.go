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

// Binary groundc grounds a PDDL-like domain/problem pair into the explicit
// ground-action list the search engine consumes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/mangle-ground/ground/ast"
	"github.com/mangle-ground/ground/build"
	"github.com/mangle-ground/ground/explore"
	"github.com/mangle-ground/ground/groundopts"
)

var (
	eraseConstants   = flag.Bool("erase_constants", true, "drop instantiations whose atoms are all statically determined")
	maxGroundActions = flag.Int("max_ground_actions", 0, "abort a schema once it would exceed this many instantiations (0 = unbounded)")
	strictNesting    = flag.Bool("strict_nesting", true, "recorded in the options only; nested forall is always rejected and nested when is always accepted")
	interactive      = flag.Bool("interactive", false, "start an interactive session instead of grounding once and exiting")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: groundc [flags] <domain-problem.json>\n\n")
		fmt.Fprintf(os.Stderr, "Grounds a lifted domain/problem description into explicit ground actions.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "groundc: %v\n", err)
		os.Exit(1)
	}

	opts := groundopts.New(
		groundopts.WithEraseConstants(*eraseConstants),
		groundopts.WithMaxGroundActions(*maxGroundActions),
		groundopts.WithStrictNesting(*strictNesting),
	)

	result, err := groundFile(data, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "groundc: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		runInteractive(result)
		return
	}

	printSummary(result)
}

// groundFile runs the whole pipeline: parse the wire file, build the symbol
// table and schema forest, and ground it via package explore.
func groundFile(data []byte, opts groundopts.Options) (explore.Result, error) {
	domain, problem, merged, err := parseWireFile(data)
	if err != nil {
		return explore.Result{}, err
	}

	table, err := build.SymbolTable(domain, problem)
	if err != nil {
		return explore.Result{}, fmt.Errorf("building symbol table: %w", err)
	}

	driver, err := explore.New(table, problem.InitTrue, domain.Predicates, merged, opts, missingFluent)
	if err != nil {
		return explore.Result{}, fmt.Errorf("building driver: %w", err)
	}

	scanner := driver.NewScanner()
	schemas, restrictions, err := build.Schemas(scanner, domain.ActionBodies)
	if err != nil {
		return explore.Result{}, fmt.Errorf("compiling schemas: %w", err)
	}
	for a, r := range restrictions {
		driver.SetRestriction(a, r)
	}

	result, err := driver.Run(schemas)
	if err != nil {
		glog.Warningf("groundc: grounding reported errors: %v", err)
	}
	return result, nil
}

func printSummary(result explore.Result) {
	fmt.Printf("grounded %d action(s) from %d schema group(s)\n", len(result.GroundActions), len(result.ByName))
	for _, act := range result.GroundActions {
		fmt.Printf("  %s%s", act.Name, paramString(act.Params))
		if act.Derived {
			fmt.Print(" [derived]")
		}
		if len(act.Children) > 0 {
			fmt.Printf(" (%d conditional effect(s) fired)", len(act.Children))
		}
		fmt.Println()
	}
	fmt.Printf("fact groups: %d\n", len(result.FactGroups))
	for _, st := range result.Stats.Schemas {
		fmt.Printf("  %-20s emitted=%-4d dup=%-3d noop=%-3d const=%-3d empty=%v\n",
			st.SchemaName, st.Emitted, st.DuplicatesRemoved, st.NoopsRemoved, st.ConstantsRemoved, st.EmptyGroundSet)
	}
}

func paramString(params []int) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", p)
	}
	return s + ")"
}

// missingFluent is the numeric-fluent lookup used when the input carries no
// numeric initial values; any schema that actually references a numeric
// fluent will surface this as a grounding error rather than silently
// treating it as zero.
func missingFluent(fn ast.NumericFunctionSym, args []int) (float64, error) {
	return 0, fmt.Errorf("groundc: no initial value recorded for fluent %v%v", fn, args)
}
