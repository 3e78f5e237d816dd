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

// ConditionalBuilder is a fluent API for building a conditional
// workflow: the first branch whose guard expression evaluates true
// runs, falling through to an optional else arm. It is the script
// host's "Workflow.conditional()" surface.
type ConditionalBuilder struct {
	g        *Globals
	name     string
	branches []types.ConditionalBranch
}

// Conditional starts a conditional workflow builder named name.
func (g *Globals) Conditional(name string) *ConditionalBuilder {
	return &ConditionalBuilder{g: g, name: name}
}

// When adds a branch guarded by condition, matching whatever the
// configured ConditionEvaluator understands (the default evaluator
// treats condition as a literal truthy key lookup in the input map).
func (b *ConditionalBuilder) When(condition string, component types.ComponentID, input map[string]any) *ConditionalBuilder {
	b.branches = append(b.branches, types.ConditionalBranch{
		Condition: condition,
		Step:      types.WorkflowStep{Name: condition, Component: component, Input: input},
	})
	return b
}

// Default sets the else arm, run when no When branch matches. It must
// be the last branch added.
func (b *ConditionalBuilder) Default(component types.ComponentID, input map[string]any) *ConditionalBuilder {
	b.branches = append(b.branches, types.ConditionalBranch{
		Step: types.WorkflowStep{Name: "default", Component: component, Input: input},
	})
	return b
}

// Execute evaluates branches in order and runs the first match.
func (b *ConditionalBuilder) Execute(ctx context.Context, input map[string]any) (types.WorkflowResult, error) {
	if len(b.branches) == 0 {
		return types.WorkflowResult{}, errs.New(errs.Validation, "conditional %q requires at least one branch", b.name)
	}
	def := types.WorkflowDefinition{
		Metadata: types.ComponentMetadata{ID: types.NewComponentID(types.KindWorkflow, b.name), Kind: types.KindWorkflow, Name: b.name},
		Kind:     types.WorkflowConditional,
		Config:   types.WorkflowConfig{Branches: b.branches},
	}
	result := b.g.Workflows.Run(ctx, def, input)
	if result.Err != "" {
		return result, errs.New(errs.Internal, "%s", result.Err)
	}
	return result, nil
}
