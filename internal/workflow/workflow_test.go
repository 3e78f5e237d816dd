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
package workflow_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/types"
	"github.com/llmspell/llmspell/internal/workflow"
)

// recordingExecutor runs a canned function per step name, and counts
// how many times each step was invoked.
type recordingExecutor struct {
	calls atomic.Int64
	fn    func(step types.WorkflowStep, input map[string]any) (map[string]any, error)
}

func (r *recordingExecutor) ExecuteStep(_ context.Context, step types.WorkflowStep, input map[string]any) (map[string]any, error) {
	r.calls.Add(1)
	if r.fn != nil {
		return r.fn(step, input)
	}
	return map[string]any{step.Name: true}, nil
}

func TestSequentialFailFastStopsAtFirstError(t *testing.T) {
	exec := &recordingExecutor{fn: func(step types.WorkflowStep, _ map[string]any) (map[string]any, error) {
		if step.Name == "b" {
			return nil, fmt.Errorf("boom")
		}
		return map[string]any{step.Name: true}, nil
	}}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowSequential,
		Steps: []types.WorkflowStep{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	result := e.Run(context.Background(), def, nil)

	require.NotEmpty(t, result.Err)
	assert.Len(t, result.Steps, 2) // c never runs
	assert.Equal(t, int64(2), exec.calls.Load())
}

func TestSequentialContinueRunsAllSteps(t *testing.T) {
	exec := &recordingExecutor{fn: func(step types.WorkflowStep, _ map[string]any) (map[string]any, error) {
		if step.Name == "b" {
			return nil, fmt.Errorf("boom")
		}
		return map[string]any{step.Name: true}, nil
	}}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind:   types.WorkflowSequential,
		Config: types.WorkflowConfig{ErrorStrategy: types.ErrorStrategyContinue},
		Steps: []types.WorkflowStep{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	result := e.Run(context.Background(), def, nil)

	assert.Empty(t, result.Err)
	assert.Len(t, result.Steps, 3)
	assert.Equal(t, int64(3), exec.calls.Load())
}

func TestParallelWaitsForAllByDefault(t *testing.T) {
	exec := &recordingExecutor{}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowParallel,
		Steps: []types.WorkflowStep{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	result := e.Run(context.Background(), def, nil)

	assert.Empty(t, result.Err)
	assert.Len(t, result.Steps, 3)
	assert.Equal(t, int64(3), exec.calls.Load())
}

func TestParallelFailOnAnyReturnsError(t *testing.T) {
	exec := &recordingExecutor{fn: func(step types.WorkflowStep, _ map[string]any) (map[string]any, error) {
		if step.Name == "b" {
			return nil, fmt.Errorf("boom")
		}
		return map[string]any{step.Name: true}, nil
	}}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind:   types.WorkflowParallel,
		Config: types.WorkflowConfig{FailOnAny: true},
		Steps: []types.WorkflowStep{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	result := e.Run(context.Background(), def, nil)
	assert.NotEmpty(t, result.Err)
}

func TestConditionalTakesFirstMatchingBranch(t *testing.T) {
	exec := &recordingExecutor{}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowConditional,
		Config: types.WorkflowConfig{
			Branches: []types.ConditionalBranch{
				{Condition: "use_b", Step: types.WorkflowStep{Name: "b"}},
				{Condition: "", Step: types.WorkflowStep{Name: "else"}},
			},
		},
	}
	result := e.Run(context.Background(), def, map[string]any{"use_b": true})

	require.Len(t, result.Steps, 1)
	assert.Equal(t, "b", result.Steps[0].Name)
}

func TestConditionalFallsThroughToElse(t *testing.T) {
	exec := &recordingExecutor{}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowConditional,
		Config: types.WorkflowConfig{
			Branches: []types.ConditionalBranch{
				{Condition: "use_b", Step: types.WorkflowStep{Name: "b"}},
				{Condition: "", Step: types.WorkflowStep{Name: "else"}},
			},
		},
	}
	result := e.Run(context.Background(), def, map[string]any{})

	require.Len(t, result.Steps, 1)
	assert.Equal(t, "else", result.Steps[0].Name)
}

func TestLoopOverCollectionAggregatesAllOutputs(t *testing.T) {
	exec := &recordingExecutor{}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowLoop,
		Config: types.WorkflowConfig{
			Loop: &types.LoopConfig{
				Source:         types.LoopSourceCollection,
				CollectionExpr: "items",
				Body:           types.WorkflowStep{Name: "process"},
				Aggregation:    types.AggregateCollectAll,
			},
		},
	}
	items := []any{"x", "y", "z"}
	result := e.Run(context.Background(), def, map[string]any{"items": items})

	assert.Empty(t, result.Err)
	assert.Len(t, result.Steps, 3)
	require.NotNil(t, result.Output)
	collected, ok := result.Output["items"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, collected, 3)
}

func TestLoopRangeRespectsBreakCondition(t *testing.T) {
	exec := &recordingExecutor{fn: func(step types.WorkflowStep, input map[string]any) (map[string]any, error) {
		idx := input["$loop_index"].(int)
		return map[string]any{"stop": idx >= 1}, nil
	}}
	e := workflow.New(exec, nil, nil)

	def := types.WorkflowDefinition{
		Kind: types.WorkflowLoop,
		Config: types.WorkflowConfig{
			Loop: &types.LoopConfig{
				Source:         types.LoopSourceRange,
				RangeStart:     0,
				RangeEnd:       10,
				Body:           types.WorkflowStep{Name: "step"},
				BreakCondition: "stop",
				Aggregation:    types.AggregateLastOnly,
			},
		},
	}
	result := e.Run(context.Background(), def, nil)

	assert.Empty(t, result.Err)
	assert.Len(t, result.Steps, 2) // breaks after index 1
}
