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

// defaultMaxIterations bounds a while-source loop when the definition
// doesn't set one, so a stuck condition can't spin the engine forever.
const defaultMaxIterations = 10000

// runLoop drives def.Config.Loop's body over its configured source —
// a fixed collection, a numeric range, or a while-condition — breaking
// early when BreakCondition holds, and aggregates the per-iteration
// outputs according to Aggregation.
func (e *Engine) runLoop(ctx context.Context, def types.WorkflowDefinition, input map[string]any) ([]types.StepResult, map[string]any, error) {
	cfg := def.Config.Loop
	if cfg == nil {
		return nil, nil, errs.New(errs.Validation, "loop workflow %q missing loop config", def.Metadata.Name)
	}

	ev := e.cond
	if ev == nil {
		ev = truthyLookupEvaluator{}
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	var results []types.StepResult
	var outputs []map[string]any
	current := cloneMap(input)

	iterate := func(iterVar any, index int) (bool, error) {
		iterInput := cloneMap(current)
		iterInput["$loop_index"] = index
		if iterVar != nil {
			iterInput["$loop_value"] = iterVar
		}

		sr := e.runStep(ctx, cfg.Body, iterInput)
		results = append(results, sr)
		if sr.Err != "" {
			return false, errs.New(errs.Internal, "loop iteration %d failed: %s", index, sr.Err)
		}
		outputs = append(outputs, sr.Output)
		current = mergeMaps(current, sr.Output)

		if cfg.BreakCondition != "" {
			stop, err := ev.Eval(ctx, cfg.BreakCondition, current)
			if err != nil {
				return false, errs.Wrap(errs.Internal, err, "evaluate break condition")
			}
			if stop {
				return true, nil
			}
		}
		return false, nil
	}

	switch cfg.Source {
	case types.LoopSourceRange:
		for i := cfg.RangeStart; i < cfg.RangeEnd && (i-cfg.RangeStart) < maxIter; i++ {
			stop, err := iterate(i, i-cfg.RangeStart)
			if err != nil {
				return results, nil, err
			}
			if stop {
				break
			}
		}

	case types.LoopSourceCollection:
		items, _ := input[cfg.CollectionExpr].([]any)
		for i, item := range items {
			if i >= maxIter {
				break
			}
			stop, err := iterate(item, i)
			if err != nil {
				return results, nil, err
			}
			if stop {
				break
			}
		}

	case types.LoopSourceWhile:
		for i := 0; i < maxIter; i++ {
			cont, err := ev.Eval(ctx, cfg.WhileCondition, current)
			if err != nil {
				return results, nil, errs.Wrap(errs.Internal, err, "evaluate while condition")
			}
			if !cont {
				break
			}
			stop, err := iterate(nil, i)
			if err != nil {
				return results, nil, err
			}
			if stop {
				break
			}
		}

	default:
		return nil, nil, errs.New(errs.Validation, "unknown loop source %q", cfg.Source)
	}

	return results, aggregate(cfg.Aggregation, cfg.AggregationN, current, outputs), nil
}

func aggregate(policy types.AggregationPolicy, n int, current map[string]any, outputs []map[string]any) map[string]any {
	switch policy {
	case types.AggregateNone:
		return nil
	case types.AggregateLastOnly:
		if len(outputs) == 0 {
			return nil
		}
		return outputs[len(outputs)-1]
	case types.AggregateFirstN:
		return map[string]any{"items": firstN(outputs, n)}
	case types.AggregateLastN:
		return map[string]any{"items": lastN(outputs, n)}
	default: // AggregateCollectAll and unset
		return map[string]any{"items": outputs}
	}
}

func firstN(items []map[string]any, n int) []map[string]any {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	return items[:n]
}

func lastN(items []map[string]any, n int) []map[string]any {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	return items[len(items)-n:]
}
