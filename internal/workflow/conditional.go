// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package workflow

import (
	"context"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// ConditionEvaluator decides whether a branch's guard expression holds
// against the workflow's current data. Expression syntax is owned by
// the script host, not the engine; the default evaluator below only
// understands a bare variable name treated as a truthiness lookup, so
// that the engine still runs standalone in tests and tooling paths
// that never wire a script-backed evaluator.
type ConditionEvaluator interface {
	Eval(ctx context.Context, expr string, data map[string]any) (bool, error)
}

// truthyLookupEvaluator is the zero-value fallback: expr names a key
// in data, and the branch is taken if that key's value is a non-zero,
// non-empty, non-false value.
type truthyLookupEvaluator struct{}

func (truthyLookupEvaluator) Eval(_ context.Context, expr string, data map[string]any) (bool, error) {
	v, ok := data[expr]
	if !ok {
		return false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return t != "", nil
	case nil:
		return false, nil
	default:
		return true, nil
	}
}

// WithConditionEvaluator overrides the engine's branch-condition
// evaluator, typically with one backed by the script host.
func (e *Engine) WithConditionEvaluator(ev ConditionEvaluator) *Engine {
	e.cond = ev
	return e
}

// runConditional evaluates def.Config.Branches in order and executes
// the step of the first branch whose Condition holds. A branch with an
// empty Condition is the else arm and always matches; it must be last
// to have any effect. If no branch matches, the workflow runs no step
// and returns a copy of its input as output.
func (e *Engine) runConditional(ctx context.Context, def types.WorkflowDefinition, input map[string]any) ([]types.StepResult, map[string]any, error) {
	ev := e.cond
	if ev == nil {
		ev = truthyLookupEvaluator{}
	}

	for _, branch := range def.Config.Branches {
		matched := branch.Condition == ""
		if !matched {
			var err error
			matched, err = ev.Eval(ctx, branch.Condition, input)
			if err != nil {
				return nil, nil, errs.Wrap(errs.Internal, err, "evaluate condition %q", branch.Condition)
			}
		}
		if !matched {
			continue
		}
		sr := e.runStep(ctx, branch.Step, input)
		if sr.Err != "" {
			return []types.StepResult{sr}, nil, errs.New(errs.Internal, "branch step %q failed: %s", branch.Step.Name, sr.Err)
		}
		return []types.StepResult{sr}, mergeMaps(input, sr.Output), nil
	}
	return nil, cloneMap(input), nil
}
