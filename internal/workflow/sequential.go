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
	"time"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// runSequential runs def's steps in order, threading each step's
// output forward as the next step's input merged over the original
// input. The reaction to a failed step is governed by
// def.Config.ErrorStrategy: fail_fast stops immediately, continue
// records the error and proceeds, retry re-attempts the step up to
// Config.Retry.MaxAttempts times with a fixed backoff between tries.
func (e *Engine) runSequential(ctx context.Context, def types.WorkflowDefinition, input map[string]any) ([]types.StepResult, map[string]any, error) {
	strategy := def.Config.ErrorStrategy
	if strategy == "" {
		strategy = types.ErrorStrategyFailFast
	}

	results := make([]types.StepResult, 0, len(def.Steps))
	current := cloneMap(input)

	for i, step := range def.Steps {
		sr := e.runStepWithRetry(ctx, step, current, strategy, def.Config.Retry)
		results = append(results, sr)

		if sr.Err != "" {
			e.logger.Error("workflow: step failed",
				zap.String("step", step.Name), zap.Int("index", i), zap.String("error", sr.Err))
			if strategy == types.ErrorStrategyFailFast {
				return results, current, errs.New(errs.Internal, "step %q failed: %s", step.Name, sr.Err)
			}
			continue
		}
		current = mergeMaps(current, sr.Output)
	}
	return results, current, nil
}

func (e *Engine) runStepWithRetry(ctx context.Context, step types.WorkflowStep, input map[string]any, strategy types.ErrorStrategy, retry *types.RetryPolicy) types.StepResult {
	if strategy != types.ErrorStrategyRetry || retry == nil || retry.MaxAttempts <= 1 {
		return e.runStep(ctx, step, input)
	}

	var last types.StepResult
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		last = e.runStep(ctx, step, input)
		if last.Err == "" {
			return last
		}
		e.logger.Warn("workflow: retrying step",
			zap.String("step", step.Name), zap.Int("attempt", attempt), zap.String("error", last.Err))
		if attempt < retry.MaxAttempts && retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(retry.Backoff):
			}
		}
	}
	return last
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	out := cloneMap(base)
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
