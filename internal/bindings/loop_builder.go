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

// LoopBuilder is a fluent API for building a loop workflow, iterating
// a body step over a collection, a numeric range, or a while
// condition. It is the script host's "Workflow.loop()" surface.
type LoopBuilder struct {
	g    *Globals
	name string
	cfg  types.LoopConfig
}

// Loop starts a loop workflow builder named name, running body for
// each iteration.
func (g *Globals) Loop(name string, body types.ComponentID, bodyInput map[string]any) *LoopBuilder {
	return &LoopBuilder{
		g:    g,
		name: name,
		cfg:  types.LoopConfig{Body: types.WorkflowStep{Name: body.String(), Component: body, Input: bodyInput}, Aggregation: types.AggregateCollectAll},
	}
}

// OverCollection iterates expr, a key into the workflow input holding
// a []any, binding each item to the body step's "$loop_value" input field.
func (b *LoopBuilder) OverCollection(expr string) *LoopBuilder {
	b.cfg.Source = types.LoopSourceCollection
	b.cfg.CollectionExpr = expr
	return b
}

// OverRange iterates the half-open integer range [start, end).
func (b *LoopBuilder) OverRange(start, end int) *LoopBuilder {
	b.cfg.Source = types.LoopSourceRange
	b.cfg.RangeStart = start
	b.cfg.RangeEnd = end
	return b
}

// While iterates as long as condition evaluates true before each pass.
func (b *LoopBuilder) While(condition string) *LoopBuilder {
	b.cfg.Source = types.LoopSourceWhile
	b.cfg.WhileCondition = condition
	return b
}

// BreakWhen stops iteration once condition evaluates true after a
// pass, independent of the loop's source.
func (b *LoopBuilder) BreakWhen(condition string) *LoopBuilder {
	b.cfg.BreakCondition = condition
	return b
}

// MaxIterations caps the number of passes, overriding the engine's
// default safety cap.
func (b *LoopBuilder) MaxIterations(n int) *LoopBuilder {
	b.cfg.MaxIterations = n
	return b
}

// Aggregate sets how per-iteration outputs are collected into the
// final result. n is only used by AggregateFirstN/AggregateLastN.
func (b *LoopBuilder) Aggregate(policy types.AggregationPolicy, n int) *LoopBuilder {
	b.cfg.Aggregation = policy
	b.cfg.AggregationN = n
	return b
}

// Execute runs the loop and returns its result.
func (b *LoopBuilder) Execute(ctx context.Context, input map[string]any) (types.WorkflowResult, error) {
	if b.cfg.Source == "" {
		return types.WorkflowResult{}, errs.New(errs.Validation, "loop %q requires an iteration source", b.name)
	}
	def := types.WorkflowDefinition{
		Metadata: types.ComponentMetadata{ID: types.NewComponentID(types.KindWorkflow, b.name), Kind: types.KindWorkflow, Name: b.name},
		Kind:     types.WorkflowLoop,
		Config:   types.WorkflowConfig{Loop: &b.cfg},
	}
	result := b.g.Workflows.Run(ctx, def, input)
	if result.Err != "" {
		return result, errs.New(errs.Internal, "%s", result.Err)
	}
	return result, nil
}
