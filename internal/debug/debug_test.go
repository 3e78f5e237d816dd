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
package debug_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/debug"
	"github.com/llmspell/llmspell/internal/types"
)

func TestBreakpointTablePausesOnceThenCeasesButKeepsCountingTotalHits(t *testing.T) {
	table := debug.NewBreakpointTable()
	loc := types.SourceLocation{Source: "main.lua", Line: 10}
	table.Add(loc, "", 1)

	bp, hit := table.Hit(loc)
	require.True(t, hit)
	assert.Equal(t, int64(1), bp.HitCount)

	_, hit = table.Hit(loc)
	assert.False(t, hit, "breakpoint should not fire again after saturating MaxHits")

	bps := table.List()
	require.Len(t, bps, 1)
	assert.Equal(t, int64(2), bps[0].TotalHits, "TotalHits keeps counting after saturation")
	assert.Equal(t, int64(1), bps[0].HitCount, "HitCount stays at the saturation point")
}

func TestBreakpointTableWithMaxHitsGreaterThanOneFiresOnlyOnTheFinalHit(t *testing.T) {
	table := debug.NewBreakpointTable()
	loc := types.SourceLocation{Source: "main.lua", Line: 10}
	table.Add(loc, "", 3)

	for i := 1; i < 3; i++ {
		_, hit := table.Hit(loc)
		assert.False(t, hit, "hit %d of 3 should not fire", i)
		assert.Equal(t, int64(i), table.List()[0].TotalHits)
	}

	bp, hit := table.Hit(loc)
	require.True(t, hit, "the 3rd hit should fire")
	assert.Equal(t, int64(3), bp.HitCount)
	assert.Equal(t, int64(3), bp.TotalHits)

	_, hit = table.Hit(loc)
	assert.False(t, hit, "breakpoint should not fire a second time past MaxHits")
}

func TestCoordinatorBlocksAtBreakpointUntilResume(t *testing.T) {
	coord := debug.NewCoordinator(types.DebugFull, nil)
	loc := types.SourceLocation{Source: "main.lua", Line: 5}
	coord.Breakpoints().Add(loc, "", 0)

	done := make(chan error, 1)
	go func() {
		done <- coord.OnLine(context.Background(), loc)
	}()

	require.Eventually(t, func() bool {
		return coord.Status().State == types.RunPaused
	}, time.Second, time.Millisecond)

	status := coord.Status()
	assert.Equal(t, types.PauseBreakpoint, status.Reason)

	require.NoError(t, coord.Resume())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("OnLine did not return after Resume")
	}
	assert.Equal(t, types.RunRunning, coord.Status().State)
}

func TestCoordinatorStepOverSkipsNestedCalls(t *testing.T) {
	coord := debug.NewCoordinator(types.DebugFull, nil)
	loc := types.SourceLocation{Source: "main.lua", Line: 1}
	coord.Breakpoints().Add(loc, "", 0)

	go func() { _ = coord.OnLine(context.Background(), loc) }()
	require.Eventually(t, func() bool { return coord.Status().State == types.RunPaused }, time.Second, time.Millisecond)
	require.NoError(t, coord.StepOver())

	coord.OnEnter(types.StackFrame{Name: "inner"})
	inner := types.SourceLocation{Source: "main.lua", Line: 2}
	assert.NoError(t, coord.OnLine(context.Background(), inner), "step-over should not pause inside a deeper call")
	coord.OnExit()
}

func TestCoordinatorTerminateReleasesPausedGoroutine(t *testing.T) {
	coord := debug.NewCoordinator(types.DebugFull, nil)
	loc := types.SourceLocation{Source: "main.lua", Line: 1}
	coord.Breakpoints().Add(loc, "", 0)

	done := make(chan error, 1)
	go func() { done <- coord.OnLine(context.Background(), loc) }()
	require.Eventually(t, func() bool { return coord.Status().State == types.RunPaused }, time.Second, time.Millisecond)

	coord.Terminate()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("OnLine did not return after Terminate")
	}
}
