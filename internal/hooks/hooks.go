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

// Package hooks implements the named hook-point registry that agent,
// tool, and workflow executions run through: before/after invocation
// (agent, tool, workflow step) and error points, each with priority-ordered
// handlers, a composition strategy, a per-hook circuit breaker, and an
// optional rate limiter.
package hooks

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Point names a place in the execution lifecycle hooks can attach to.
type Point string

const (
	BeforeAgentExec    Point = "before_agent_exec"
	AfterAgentExec     Point = "after_agent_exec"
	BeforeToolExec     Point = "before_tool_exec"
	AfterToolExec      Point = "after_tool_exec"
	BeforeWorkflowStep Point = "before_workflow_step"
	AfterWorkflowStep  Point = "after_workflow_step"
	OnError            Point = "on_error"
)

// Context carries the data a hook can read and the in-place mutations
// it can make (e.g. rewriting a tool call's arguments).
type Context struct {
	Point    Point
	Data     map[string]any
	Err      error
}

// Result is a hook's verdict: whether execution should continue, and
// for Voting composition, whether this hook approves.
type Result struct {
	Continue bool
	Approve  bool
	Data     map[string]any
}

// Hook is a single named, prioritized handler for a Point.
type Hook struct {
	ID       string
	Priority int
	Fn       func(ctx context.Context, hc *Context) (Result, error)
}

// Composition selects how multiple hooks registered at the same Point
// combine their results.
type Composition string

const (
	Sequential Composition = "sequential"
	Parallel   Composition = "parallel"
	Voting     Composition = "voting"
)

type pointConfig struct {
	composition Composition
	hooks       []*Hook
}

// Registry holds hooks grouped by Point, each wrapped in its own
// circuit breaker and optional rate limiter.
type Registry struct {
	mu       sync.RWMutex
	points   map[Point]*pointConfig
	breakers map[string]*CircuitBreaker
	limiters map[string]*RateLimiter
	logger   *zap.Logger
	cbConfig CircuitBreakerConfig
}

// NewRegistry constructs an empty Registry. cbConfig is applied to
// every hook's circuit breaker unless overridden per-hook via
// SetCircuitBreakerConfig.
func NewRegistry(cbConfig CircuitBreakerConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		points:   make(map[Point]*pointConfig),
		breakers: make(map[string]*CircuitBreaker),
		limiters: make(map[string]*RateLimiter),
		logger:   logger,
		cbConfig: cbConfig,
	}
}

// SetComposition sets how hooks at point combine; defaults to Sequential.
func (r *Registry) SetComposition(point Point, c Composition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config(point).composition = c
}

// Register adds hook to point, sorted by descending priority.
func (r *Registry) Register(point Point, hook *Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.config(point)
	cfg.hooks = append(cfg.hooks, hook)
	sort.SliceStable(cfg.hooks, func(i, j int) bool { return cfg.hooks[i].Priority > cfg.hooks[j].Priority })
	if _, ok := r.breakers[hook.ID]; !ok {
		r.breakers[hook.ID] = NewCircuitBreaker(hook.ID, r.cbConfig, r.logger)
	}
}

// SetRateLimit installs a token-bucket rate limiter for hookID. Calls
// beyond the limit are skipped (treated as Continue: true, no-op) and
// counted as violations.
func (r *Registry) SetRateLimit(hookID string, rl *RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[hookID] = rl
}

func (r *Registry) config(point Point) *pointConfig {
	cfg, ok := r.points[point]
	if !ok {
		cfg = &pointConfig{composition: Sequential}
		r.points[point] = cfg
	}
	return cfg
}

// Execute runs every hook registered at point according to the
// point's composition strategy. Each hook call is wrapped by its own
// circuit breaker and rate limiter.
func (r *Registry) Execute(ctx context.Context, point Point, hc *Context) (Result, error) {
	r.mu.RLock()
	cfg, ok := r.points[point]
	if !ok {
		r.mu.RUnlock()
		return Result{Continue: true}, nil
	}
	hookList := make([]*Hook, len(cfg.hooks))
	copy(hookList, cfg.hooks)
	composition := cfg.composition
	r.mu.RUnlock()

	switch composition {
	case Voting:
		return r.executeVoting(ctx, hookList, hc)
	case Parallel:
		return r.executeParallel(ctx, hookList, hc)
	default:
		return r.executeSequential(ctx, hookList, hc)
	}
}

func (r *Registry) runOne(ctx context.Context, h *Hook, hc *Context) (Result, error) {
	r.mu.RLock()
	limiter := r.limiters[h.ID]
	breaker := r.breakers[h.ID]
	r.mu.RUnlock()

	if limiter != nil && !limiter.Allow() {
		r.logger.Warn("hooks: rate limit exceeded, skipping", zap.String("hook_id", h.ID))
		return Result{Continue: true}, nil
	}
	if breaker == nil {
		return h.Fn(ctx, hc)
	}
	var result Result
	err := breaker.Execute(ctx, func() error {
		var innerErr error
		result, innerErr = h.Fn(ctx, hc)
		return innerErr
	})
	return result, err
}

func (r *Registry) executeSequential(ctx context.Context, hookList []*Hook, hc *Context) (Result, error) {
	final := Result{Continue: true}
	for _, h := range hookList {
		res, err := r.runOne(ctx, h, hc)
		if err != nil {
			return res, err
		}
		final = res
		if !res.Continue {
			return final, nil
		}
	}
	return final, nil
}

func (r *Registry) executeParallel(ctx context.Context, hookList []*Hook, hc *Context) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	outcomes := make([]outcome, len(hookList))
	var wg sync.WaitGroup
	for i, h := range hookList {
		wg.Add(1)
		go func(i int, h *Hook) {
			defer wg.Done()
			res, err := r.runOne(ctx, h, hc)
			outcomes[i] = outcome{res, err}
		}(i, h)
	}
	wg.Wait()

	final := Result{Continue: true}
	for _, o := range outcomes {
		if o.err != nil {
			return o.res, o.err
		}
		if !o.res.Continue {
			final.Continue = false
		}
	}
	return final, nil
}

// executeVoting runs every hook and continues only if at least half
// approve (a tie passes).
func (r *Registry) executeVoting(ctx context.Context, hookList []*Hook, hc *Context) (Result, error) {
	if len(hookList) == 0 {
		return Result{Continue: true}, nil
	}
	approvals := 0
	for _, h := range hookList {
		res, err := r.runOne(ctx, h, hc)
		if err != nil {
			return res, err
		}
		if res.Approve {
			approvals++
		}
	}
	return Result{Continue: approvals*2 >= len(hookList)}, nil
}

// BreakerState returns the live circuit state of hookID's breaker, or
// false if no breaker has been created for it yet.
func (r *Registry) BreakerState(hookID string) (CircuitState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[hookID]
	if !ok {
		return StateClosed, false
	}
	return b.State(), true
}
