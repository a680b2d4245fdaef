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

import "fmt"

// ApplyBinding resolves every Binding of fact against a parameter tuple,
// returning the fully ground object-code argument list. It is the
// grounding engine's equivalent of substitution application: every
// Binding.ParamIndex is replaced by params[index], every Binding.Const
// passes through unchanged.
func ApplyBinding(fact SymbolicFact, params []int) ([]int, error) {
	args := make([]int, len(fact.Bindings))
	for i, b := range fact.Bindings {
		if b.IsParam {
			if b.ParamIndex < 0 || b.ParamIndex >= len(params) {
				return nil, fmt.Errorf("ast: parameter index %d out of range (have %d params)", b.ParamIndex, len(params))
			}
			args[i] = params[b.ParamIndex]
		} else {
			args[i] = b.Const
		}
	}
	return args, nil
}

// ApplyNumericExpr evaluates a numeric expression under a parameter tuple,
// given a lookup for ground numeric fluent values.
func ApplyNumericExpr(e NumericExpr, params []int, fluent func(NumericFunctionSym, []int) (float64, error)) (float64, error) {
	switch v := e.(type) {
	case NumericConst:
		return v.Value, nil
	case NumericFluentRef:
		args, err := ApplyBinding(SymbolicFact{Bindings: v.Bindings}, params)
		if err != nil {
			return 0, err
		}
		return fluent(v.Function, args)
	case NumericBinOp:
		left, err := ApplyNumericExpr(v.Left, params, fluent)
		if err != nil {
			return 0, err
		}
		right, err := ApplyNumericExpr(v.Right, params, fluent)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("ast: division by zero evaluating %s", v.String())
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("ast: unknown numeric operator %q", v.Op)
		}
	default:
		return 0, fmt.Errorf("ast: unknown numeric expression type %T", e)
	}
}
