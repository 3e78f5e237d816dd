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
package bindings

import (
	"context"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// ParallelBuilder is a fluent API for building a parallel workflow:
// every task runs concurrently against its own input, with the
// results merged back into one output map. It is the script host's
// "Workflow.parallel()" surface, also used for fork-join: WithTask the
// same component under distinct names for a fan-out-merge pattern.
type ParallelBuilder struct {
	g           *Globals
	name        string
	tasks       []types.WorkflowStep
	maxParallel int
	failOnAny   bool
}

// Parallel starts a parallel workflow builder named name.
func (g *Globals) Parallel(name string) *ParallelBuilder {
	return &ParallelBuilder{g: g, name: name}
}

// WithTask adds an independent task invoking the named component.
func (b *ParallelBuilder) WithTask(taskName string, component types.ComponentID, input map[string]any) *ParallelBuilder {
	b.tasks = append(b.tasks, types.WorkflowStep{Name: taskName, Component: component, Input: input})
	return b
}

// WithMaxParallel caps how many tasks run concurrently; zero means
// unbounded (all tasks run at once).
func (b *ParallelBuilder) WithMaxParallel(n int) *ParallelBuilder {
	b.maxParallel = n
	return b
}

// FailOnAny cancels the remaining tasks as soon as one fails, instead
// of the default wait-for-all-then-report behavior.
func (b *ParallelBuilder) FailOnAny() *ParallelBuilder {
	b.failOnAny = true
	return b
}

// Execute runs every task concurrently and returns the merged result.
func (b *ParallelBuilder) Execute(ctx context.Context, input map[string]any) (types.WorkflowResult, error) {
	if len(b.tasks) < 1 {
		return types.WorkflowResult{}, errs.New(errs.Validation, "parallel %q requires at least one task", b.name)
	}
	def := types.WorkflowDefinition{
		Metadata: types.ComponentMetadata{ID: types.NewComponentID(types.KindWorkflow, b.name), Kind: types.KindWorkflow, Name: b.name},
		Kind:     types.WorkflowParallel,
		Steps:    b.tasks,
		Config:   types.WorkflowConfig{MaxParallel: b.maxParallel, FailOnAny: b.failOnAny},
	}
	result := b.g.Workflows.Run(ctx, def, input)
	if result.Err != "" {
		return result, errs.New(errs.Internal, "%s", result.Err)
	}
	return result, nil
}
