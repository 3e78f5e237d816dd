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
	"sync"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// runParallel fans def's steps out concurrently, bounded by
// Config.MaxParallel (0 means unbounded), and joins on every step
// finishing. By default the join waits for all steps regardless of
// failure and merges every successful step's output into the combined
// result (Config.FailOnAny = false). Setting FailOnAny cancels the
// context the steps share once one step fails; the join still waits
// for every step (steps not yet launched start with the cancelled
// context) and then returns the first error with no merged output.
func (e *Engine) runParallel(ctx context.Context, def types.WorkflowDefinition, input map[string]any) ([]types.StepResult, map[string]any, error) {
	n := len(def.Steps)
	results := make([]types.StepResult, n)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxParallelSlots(def.Config.MaxParallel, n))
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for i, step := range def.Steps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, step types.WorkflowStep) {
			defer wg.Done()
			defer func() { <-sem }()

			sr := e.runStep(runCtx, step, input)
			results[i] = sr

			if sr.Err != "" && def.Config.FailOnAny {
				mu.Lock()
				if firstErr == nil {
					firstErr = errs.New(errs.Internal, "step %q failed: %s", step.Name, sr.Err)
					cancel()
				}
				mu.Unlock()
			}
		}(i, step)
	}
	wg.Wait()

	if firstErr != nil {
		return results, nil, firstErr
	}

	merged := cloneMap(input)
	for _, sr := range results {
		if sr.Err == "" {
			merged = mergeMaps(merged, sr.Output)
		}
	}
	return results, merged, nil
}

func maxParallelSlots(configured, total int) int {
	if configured <= 0 || configured > total {
		if total == 0 {
			return 1
		}
		return total
	}
	return configured
}
