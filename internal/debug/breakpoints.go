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

// Package debug implements the breakpoint table, step-mode state
// machine, and pause rendezvous that a script host's line-level hook
// reports into and a debug client (kernel control channel, CLI REPL)
// drives.
package debug

import (
	"sync"

	"github.com/llmspell/llmspell/internal/types"
)

// BreakpointTable tracks breakpoints keyed by ID and indexed by source
// location for fast per-line lookup from the execution hot path.
type BreakpointTable struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*types.Breakpoint
	byLoc  map[types.SourceLocation][]int64
}

// NewBreakpointTable builds an empty table.
func NewBreakpointTable() *BreakpointTable {
	return &BreakpointTable{
		byID:  make(map[int64]*types.Breakpoint),
		byLoc: make(map[types.SourceLocation][]int64),
	}
}

// Add registers a new breakpoint and returns it with an assigned ID.
func (t *BreakpointTable) Add(loc types.SourceLocation, condition string, maxHits int64) types.Breakpoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	bp := &types.Breakpoint{
		ID:        t.nextID,
		Location:  loc,
		Condition: condition,
		Enabled:   true,
		MaxHits:   maxHits,
	}
	t.byID[bp.ID] = bp
	t.byLoc[loc] = append(t.byLoc[loc], bp.ID)
	return *bp
}

// Remove deletes a breakpoint by ID.
func (t *BreakpointTable) Remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	bp, ok := t.byID[id]
	if !ok {
		return false
	}
	delete(t.byID, id)
	ids := t.byLoc[bp.Location]
	for i, existing := range ids {
		if existing == id {
			t.byLoc[bp.Location] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}

// SetEnabled toggles a breakpoint without removing it.
func (t *BreakpointTable) SetEnabled(id int64, enabled bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	bp, ok := t.byID[id]
	if !ok {
		return false
	}
	bp.Enabled = enabled
	return true
}

// List returns a snapshot of every breakpoint.
func (t *BreakpointTable) List() []types.Breakpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Breakpoint, 0, len(t.byID))
	for _, bp := range t.byID {
		out = append(out, *bp)
	}
	return out
}

// Hit checks whether any enabled breakpoint at loc fires, recording
// the hit against its counters. With MaxHits set to H, the breakpoint
// fires exactly once, the moment HitCount reaches H, and never again;
// TotalHits keeps incrementing past that point for observability.
// MaxHits <= 0 means unlimited: the breakpoint fires on every hit.
func (t *BreakpointTable) Hit(loc types.SourceLocation) (types.Breakpoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range t.byLoc[loc] {
		bp := t.byID[id]
		if !bp.Enabled {
			continue
		}
		bp.TotalHits++
		if bp.MaxHits > 0 && bp.HitCount >= bp.MaxHits {
			continue
		}
		bp.HitCount++
		if bp.MaxHits > 0 && bp.HitCount != bp.MaxHits {
			continue
		}
		return *bp, true
	}
	return types.Breakpoint{}, false
}
