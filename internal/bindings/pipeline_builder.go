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

// PipelineBuilder is a fluent API for building a sequential workflow:
// each stage's output feeds the next stage's input. It is the script
// host's "Workflow.sequential()" surface.
type PipelineBuilder struct {
	g        *Globals
	name     string
	stages   []types.WorkflowStep
	strategy types.ErrorStrategy
	retry    *types.RetryPolicy
}

// Pipeline starts a sequential workflow builder named name.
func (g *Globals) Pipeline(name string) *PipelineBuilder {
	return &PipelineBuilder{g: g, name: name, strategy: types.ErrorStrategyFailFast}
}

// WithStage adds a stage that invokes the named registered component
// (agent or tool) with the given input.
func (b *PipelineBuilder) WithStage(component types.ComponentID, input map[string]any) *PipelineBuilder {
	b.stages = append(b.stages, types.WorkflowStep{Name: component.String(), Component: component, Input: input})
	return b
}

// WithNamedStage is WithStage with an explicit step name distinct from
// the component ID, useful when the same component runs more than once.
func (b *PipelineBuilder) WithNamedStage(name string, component types.ComponentID, input map[string]any) *PipelineBuilder {
	b.stages = append(b.stages, types.WorkflowStep{Name: name, Component: component, Input: input})
	return b
}

// OnError sets the error handling strategy for the pipeline.
func (b *PipelineBuilder) OnError(strategy types.ErrorStrategy) *PipelineBuilder {
	b.strategy = strategy
	return b
}

// WithRetry enables the Retry error strategy with the given policy.
func (b *PipelineBuilder) WithRetry(policy types.RetryPolicy) *PipelineBuilder {
	b.strategy = types.ErrorStrategyRetry
	b.retry = &policy
	return b
}

// Execute runs the pipeline and returns its result.
func (b *PipelineBuilder) Execute(ctx context.Context, input map[string]any) (types.WorkflowResult, error) {
	if len(b.stages) < 1 {
		return types.WorkflowResult{}, errs.New(errs.Validation, "pipeline %q requires at least one stage", b.name)
	}
	def := types.WorkflowDefinition{
		Metadata: types.ComponentMetadata{ID: types.NewComponentID(types.KindWorkflow, b.name), Kind: types.KindWorkflow, Name: b.name},
		Kind:     types.WorkflowSequential,
		Steps:    b.stages,
		Config:   types.WorkflowConfig{ErrorStrategy: b.strategy, Retry: b.retry},
	}
	result := b.g.Workflows.Run(ctx, def, input)
	if result.Err != "" {
		return result, errs.New(errs.Internal, "%s", result.Err)
	}
	return result, nil
}
