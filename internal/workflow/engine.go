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

// Package workflow implements the four composite execution patterns
// llmspell workflows are built from: Sequential, Parallel, Conditional,
// and Loop. The engine itself is agnostic to what a leaf step does —
// invoking an agent, calling a tool, or running a script callback —
// and dispatches leaf work through the StepExecutor it is given.
package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/hooks"
	"github.com/llmspell/llmspell/internal/types"
)

// StepExecutor runs a single leaf step (one bound to a ComponentID)
// and returns its output. Implementations live in the bindings and
// provider layers; the workflow engine only orchestrates composition.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, step types.WorkflowStep, input map[string]any) (map[string]any, error)
}

// Engine runs WorkflowDefinitions against a StepExecutor, instrumenting
// every step through the hook registry's Before/AfterWorkflowStep points.
type Engine struct {
	exec   StepExecutor
	hooks  *hooks.Registry
	logger *zap.Logger
	cond   ConditionEvaluator
}

// New constructs an Engine. hookRegistry may be nil, in which case
// step execution runs uninstrumented.
func New(exec StepExecutor, hookRegistry *hooks.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{exec: exec, hooks: hookRegistry, logger: logger}
}

// Run executes def against input, dispatching to the composite
// executor matching def.Kind.
func (e *Engine) Run(ctx context.Context, def types.WorkflowDefinition, input map[string]any) types.WorkflowResult {
	start := time.Now()
	result := types.WorkflowResult{WorkflowID: def.Metadata.ID, StartedAt: start}

	e.logger.Info("workflow: starting",
		zap.String("name", def.Metadata.Name), zap.String("kind", string(def.Kind)))

	var steps []types.StepResult
	var output map[string]any
	var err error

	switch def.Kind {
	case types.WorkflowSequential:
		steps, output, err = e.runSequential(ctx, def, input)
	case types.WorkflowParallel:
		steps, output, err = e.runParallel(ctx, def, input)
	case types.WorkflowConditional:
		steps, output, err = e.runConditional(ctx, def, input)
	case types.WorkflowLoop:
		steps, output, err = e.runLoop(ctx, def, input)
	default:
		err = errs.New(errs.Validation, "unknown workflow kind %q", def.Kind)
	}

	result.Steps = steps
	result.Output = output
	result.FinishedAt = time.Now()
	if err != nil {
		result.Err = err.Error()
		e.logger.Error("workflow: failed", zap.String("name", def.Metadata.Name), zap.Error(err))
	} else {
		e.logger.Info("workflow: completed",
			zap.String("name", def.Metadata.Name), zap.Duration("duration", result.FinishedAt.Sub(start)))
	}
	return result
}

// runStep executes a single step (leaf or nested), instrumented by the
// hook registry's workflow-step points.
func (e *Engine) runStep(ctx context.Context, step types.WorkflowStep, input map[string]any) types.StepResult {
	start := time.Now()

	if e.hooks != nil {
		hc := &hooks.Context{Point: hooks.BeforeWorkflowStep, Data: map[string]any{"step": step.Name, "input": input}}
		res, err := e.hooks.Execute(ctx, hooks.BeforeWorkflowStep, hc)
		if err != nil {
			return types.StepResult{Name: step.Name, Err: err.Error(), Duration: time.Since(start)}
		}
		if !res.Continue {
			return types.StepResult{Name: step.Name, Skipped: true, Duration: time.Since(start)}
		}
	}

	var output map[string]any
	var stepErr error
	if step.Nested != nil {
		nested := e.Run(ctx, *step.Nested, input)
		output = nested.Output
		if nested.Err != "" {
			stepErr = errs.New(errs.Internal, "%s", nested.Err)
		}
	} else {
		output, stepErr = e.exec.ExecuteStep(ctx, step, input)
	}

	sr := types.StepResult{Name: step.Name, Output: output, Duration: time.Since(start)}
	if stepErr != nil {
		sr.Err = stepErr.Error()
	}

	if e.hooks != nil {
		hc := &hooks.Context{Point: hooks.AfterWorkflowStep, Data: map[string]any{"step": step.Name, "output": output}, Err: stepErr}
		_, _ = e.hooks.Execute(ctx, hooks.AfterWorkflowStep, hc)
	}
	return sr
}
