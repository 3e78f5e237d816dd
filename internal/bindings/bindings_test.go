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
package bindings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/bindings"
	"github.com/llmspell/llmspell/internal/debug"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/hooks"
	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/storage/memory"
	"github.com/llmspell/llmspell/internal/types"
	"github.com/llmspell/llmspell/internal/workflow"
)

type echoExecutor struct{}

func (echoExecutor) ExecuteStep(_ context.Context, step types.WorkflowStep, input map[string]any) (map[string]any, error) {
	out := map[string]any{"ran": step.Name}
	for k, v := range input {
		out[k] = v
	}
	return out, nil
}

func newTestGlobals(t *testing.T) *bindings.Globals {
	t.Helper()
	kv := memory.New()
	bus := eventbus.New(16, nil)
	reg := registry.New(bus, nil)
	sessions := session.NewManager(kv, bus, nil)
	artifacts, err := session.NewArtifactStore(kv)
	require.NoError(t, err)
	hookRegistry := hooks.NewRegistry(hooks.CircuitBreakerConfig{}, nil)
	engine := workflow.New(echoExecutor{}, hookRegistry, nil)
	coord := debug.NewCoordinator(types.DebugFull, nil)
	return bindings.New(reg, sessions, artifacts, bus, hookRegistry, coord, engine, nil)
}

func TestPipelineBuilderRunsStagesInOrder(t *testing.T) {
	g := newTestGlobals(t)
	toolID, err := g.Discovery().RegisterTool(types.ToolSchema{Metadata: types.ComponentMetadata{Name: "echo"}})
	require.NoError(t, err)

	result, err := g.Pipeline("greet").WithStage(toolID, map[string]any{"x": 1}).Execute(context.Background(), map[string]any{"seed": true})
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
	require.Equal(t, toolID.String(), result.Steps[0].Name)
}

func TestParallelBuilderRequiresAtLeastOneTask(t *testing.T) {
	g := newTestGlobals(t)
	_, err := g.Parallel("empty").Execute(context.Background(), nil)
	require.Error(t, err)
}

func TestConditionalBuilderFallsThroughToDefault(t *testing.T) {
	g := newTestGlobals(t)
	toolID, err := g.Discovery().RegisterTool(types.ToolSchema{Metadata: types.ComponentMetadata{Name: "fallback"}})
	require.NoError(t, err)

	result, err := g.Conditional("route").
		When("nope", toolID, nil).
		Default(toolID, nil).
		Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.Len(t, result.Steps, 1)
}

func TestLoopBuilderOverRangeAggregatesOutputs(t *testing.T) {
	g := newTestGlobals(t)
	toolID, err := g.Discovery().RegisterTool(types.ToolSchema{Metadata: types.ComponentMetadata{Name: "iter"}})
	require.NoError(t, err)

	result, err := g.Loop("count", toolID, nil).OverRange(0, 3).Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.Len(t, result.Steps, 3)
}

func TestSessionAndArtifactGlobalsRoundTrip(t *testing.T) {
	g := newTestGlobals(t)
	ctx := context.Background()

	s, err := g.Session().Create(ctx, "demo")
	require.NoError(t, err)

	meta, err := g.Artifact().Put(ctx, s.ID, "note.txt", "text/plain", []byte("hello"), nil)
	require.NoError(t, err)

	content, _, err := g.Artifact().Get(ctx, meta.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestEventGlobalEmitAndSubscribe(t *testing.T) {
	g := newTestGlobals(t)
	sub := g.Event().Subscribe("script.*")
	defer sub.Close()

	g.Event().Emit("script.tick", map[string]any{"n": 1})

	ev, ok := sub.Next()
	require.True(t, ok)
	require.Equal(t, "script.tick", ev.Topic)
}

func TestDebugGlobalSetsBreakpoint(t *testing.T) {
	g := newTestGlobals(t)
	bp, err := g.Debug().SetBreakpoint("main.lua", 10, "", 0)
	require.NoError(t, err)
	require.Len(t, g.Debug().Breakpoints(), 1)
	require.True(t, g.Debug().RemoveBreakpoint(bp.ID))
}
