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
package types

import "time"

// WorkflowKind is the composite execution pattern a workflow uses.
type WorkflowKind string

const (
	WorkflowSequential  WorkflowKind = "sequential"
	WorkflowParallel    WorkflowKind = "parallel"
	WorkflowConditional WorkflowKind = "conditional"
	WorkflowLoop        WorkflowKind = "loop"
)

// ErrorStrategy controls how a sequential workflow reacts to a failed step.
type ErrorStrategy string

const (
	ErrorStrategyFailFast ErrorStrategy = "fail_fast"
	ErrorStrategyContinue ErrorStrategy = "continue"
	ErrorStrategyRetry    ErrorStrategy = "retry"
)

// AggregationPolicy controls how a loop workflow collects iteration results.
type AggregationPolicy string

const (
	AggregateCollectAll AggregationPolicy = "collect_all"
	AggregateFirstN     AggregationPolicy = "first_n"
	AggregateLastN      AggregationPolicy = "last_n"
	AggregateLastOnly   AggregationPolicy = "last_only"
	AggregateNone       AggregationPolicy = "none"
)

// LoopSource selects how a loop workflow produces its iterations.
type LoopSource string

const (
	LoopSourceCollection LoopSource = "collection"
	LoopSourceRange      LoopSource = "range"
	LoopSourceWhile      LoopSource = "while"
)

// RetryPolicy configures the Retry error strategy.
type RetryPolicy struct {
	MaxAttempts int           `json:"max_attempts"`
	Backoff     time.Duration `json:"backoff"`
}

// WorkflowStep is one unit of work in a workflow definition. Exactly
// one of Component (leaf: agent/tool invocation) or Nested (composite
// sub-workflow) is populated.
type WorkflowStep struct {
	Name      string            `json:"name"`
	Component ComponentID       `json:"component,omitempty"`
	Nested    *WorkflowDefinition `json:"nested,omitempty"`
	Input     map[string]any    `json:"input,omitempty"`
	Condition string            `json:"condition,omitempty"`
}

// ConditionalBranch pairs a guard expression with the step to run when
// it evaluates true. A branch with an empty Condition is the else arm
// and must be last.
type ConditionalBranch struct {
	Condition string       `json:"condition,omitempty"`
	Step      WorkflowStep `json:"step"`
}

// LoopConfig configures a Loop workflow's iteration source, bound, and
// result aggregation.
type LoopConfig struct {
	Source          LoopSource        `json:"source"`
	CollectionExpr  string            `json:"collection_expr,omitempty"`
	RangeStart      int               `json:"range_start,omitempty"`
	RangeEnd        int               `json:"range_end,omitempty"`
	WhileCondition  string            `json:"while_condition,omitempty"`
	BreakCondition  string            `json:"break_condition,omitempty"`
	MaxIterations   int               `json:"max_iterations"`
	Body            WorkflowStep      `json:"body"`
	Aggregation     AggregationPolicy `json:"aggregation"`
	AggregationN    int               `json:"aggregation_n,omitempty"`
}

// WorkflowConfig carries the per-kind options for a workflow definition.
type WorkflowConfig struct {
	ErrorStrategy ErrorStrategy  `json:"error_strategy,omitempty"`
	Retry         *RetryPolicy   `json:"retry,omitempty"`
	MaxParallel   int            `json:"max_parallel,omitempty"`
	FailOnAny     bool           `json:"fail_on_any,omitempty"`
	Branches      []ConditionalBranch `json:"branches,omitempty"`
	Loop          *LoopConfig    `json:"loop,omitempty"`
}

// WorkflowDefinition is the declarative description of a composite
// workflow: its kind, ordered steps, and kind-specific config.
type WorkflowDefinition struct {
	Metadata ComponentMetadata `json:"metadata"`
	Kind     WorkflowKind      `json:"kind"`
	Steps    []WorkflowStep    `json:"steps,omitempty"`
	Config   WorkflowConfig    `json:"config"`
}

// StepResult is the outcome of executing one workflow step.
type StepResult struct {
	Name     string         `json:"name"`
	Output   map[string]any `json:"output,omitempty"`
	Err      string         `json:"error,omitempty"`
	Skipped  bool           `json:"skipped,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// WorkflowResult is the outcome of executing a workflow definition.
type WorkflowResult struct {
	WorkflowID ComponentID    `json:"workflow_id"`
	Steps      []StepResult   `json:"steps"`
	Output     map[string]any `json:"output,omitempty"`
	Err        string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
