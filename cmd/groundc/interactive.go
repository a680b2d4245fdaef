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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mangle-ground/ground/explore"
)

const prompt = "groundc> "

// runInteractive drops into a small readline REPL over an already-ground
// Result, mirroring the teacher's interpreter.nextLineWithPrompt shape:
// one readline.New per line rather than a persistent instance, since the
// session has no multi-line buffering to preserve between reads.
func runInteractive(result explore.Result) {
	fmt.Printf("groundc interactive: %d ground action(s), %d fact group(s). Type 'help'.\n",
		len(result.GroundActions), len(result.FactGroups))
	for {
		rl, err := readline.New(prompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "groundc: %v\n", err)
			return
		}
		line, err := rl.Readline()
		rl.Close()
		if err != nil {
			return // EOF or interrupt ends the session
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		readline.AddHistory(line)
		if !dispatch(result, line) {
			return
		}
	}
}

func dispatch(result explore.Result, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Println("commands: list, show <name>, stats, groups, quit")
	case "list":
		for name := range result.ByName {
			fmt.Println(" ", name)
		}
	case "show":
		if len(fields) != 2 {
			fmt.Println("usage: show <schema-name>")
			break
		}
		for _, act := range result.ByName[fields[1]] {
			fmt.Printf("  %s%v derived=%v\n", act.Name, act.Params, act.Derived)
		}
	case "stats":
		for _, st := range result.Stats.Schemas {
			fmt.Printf("  %-20s emitted=%d dup=%d noop=%d const=%d\n",
				st.SchemaName, st.Emitted, st.DuplicatesRemoved, st.NoopsRemoved, st.ConstantsRemoved)
		}
	case "groups":
		fmt.Printf("%d fact group(s)\n", len(result.FactGroups))
		for i, g := range result.FactGroups {
			fmt.Printf("  group %d: %v\n", i, g)
		}
	default:
		fmt.Printf("unknown command %q, try 'help'\n", fields[0])
	}
	return true
}
