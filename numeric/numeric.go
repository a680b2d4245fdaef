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

// Package numeric grounds an ActionSchema's numeric preconditions and
// effects under a parameter binding. The arithmetic itself is delegated to
// ast.ApplyNumericExpr (adapted from the teacher's builtin.EvalApplyFn
// family: plus/minus/mult/div over resolved operands, division by zero
// reported rather than silently producing Inf); this package adds the
// relational/assignment layer (<, <=, =, assign, increase, decrease) the
// grounding engine needs on top of it.
package numeric

import (
	"fmt"

	"github.com/mangle-ground/ground/ast"
)

// FluentLookup resolves a ground numeric fluent reference to its current
// value, e.g. from the problem's initial-fluent table.
type FluentLookup func(fn ast.NumericFunctionSym, args []int) (float64, error)

// GroundCondition evaluates cond under params, returning the resolved
// operand values plus whether the relation holds.
func GroundCondition(cond ast.NumericCondition, params []int, lookup FluentLookup) (left, right float64, holds bool, err error) {
	left, err = ast.ApplyNumericExpr(cond.Left, params, lookup)
	if err != nil {
		return 0, 0, false, err
	}
	right, err = ast.ApplyNumericExpr(cond.Right, params, lookup)
	if err != nil {
		return 0, 0, false, err
	}
	switch cond.Op {
	case ast.OpLt:
		holds = left < right
	case ast.OpLe:
		holds = left <= right
	case ast.OpEq:
		holds = left == right
	default:
		return left, right, false, fmt.Errorf("numeric: %v is not a valid condition operator", cond.Op)
	}
	return left, right, holds, nil
}

// GroundEffect evaluates eff under params, returning the target fluent's
// ground argument tuple and its resulting value.
func GroundEffect(eff ast.NumericEffect, params []int, lookup FluentLookup) (args []int, value float64, err error) {
	args, err = ast.ApplyBinding(ast.SymbolicFact{Bindings: eff.Target.Bindings}, params)
	if err != nil {
		return nil, 0, err
	}
	rhs, err := ast.ApplyNumericExpr(eff.Value, params, lookup)
	if err != nil {
		return nil, 0, err
	}
	switch eff.Op {
	case ast.OpAssign:
		return args, rhs, nil
	case ast.OpIncrease, ast.OpDecrease:
		current, err := lookup(eff.Target.Function, args)
		if err != nil {
			return nil, 0, err
		}
		if eff.Op == ast.OpIncrease {
			return args, current + rhs, nil
		}
		return args, current - rhs, nil
	default:
		return nil, 0, fmt.Errorf("numeric: %v is not a valid effect operator", eff.Op)
	}
}
