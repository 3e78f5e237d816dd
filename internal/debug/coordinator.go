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
package debug

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// Coordinator is the debug control plane for one running script. The
// script host calls OnLine/OnEnter/OnExit from its execution hot path;
// a debug client (kernel control channel, CLI REPL) calls Resume,
// Step*, and the breakpoint table concurrently. Pausing the execution
// goroutine is a rendezvous on a channel, mirroring the fast-path
// delivery the communication layer uses for other targeted signals,
// rather than a polling loop.
type Coordinator struct {
	mode   types.DebugMode
	bps    *BreakpointTable
	logger *zap.Logger

	mu        sync.Mutex
	state     types.RunState
	reason    types.PauseReason
	at        types.SourceLocation
	stepMode  types.StepMode
	stepDepth int // call depth the current step-over/out began at
	depth     int
	stack     []types.StackFrame
	resumeCh  chan struct{}
}

// NewCoordinator builds a Coordinator in Running state. mode Disabled
// makes every hook call a no-op fast path, so instrumented script
// hosts pay no rendezvous cost when debugging isn't active.
func NewCoordinator(mode types.DebugMode, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		mode:   mode,
		bps:    NewBreakpointTable(),
		logger: logger,
		state:  types.RunRunning,
	}
}

// Breakpoints exposes the coordinator's breakpoint table.
func (c *Coordinator) Breakpoints() *BreakpointTable { return c.bps }

// Status returns a snapshot of the current run state, pause reason,
// location, and call stack.
func (c *Coordinator) Status() types.RunStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	stack := make([]types.StackFrame, len(c.stack))
	copy(stack, c.stack)
	return types.RunStatus{State: c.state, Reason: c.reason, At: c.at, Stack: stack}
}

// OnEnter pushes a stack frame as the script host enters a function or
// block. Returns the new call depth.
func (c *Coordinator) OnEnter(frame types.StackFrame) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stack = append(c.stack, frame)
	c.depth++
	return c.depth
}

// OnExit pops the top stack frame as the script host leaves a function
// or block.
func (c *Coordinator) OnExit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	if c.depth > 0 {
		c.depth--
	}
}

// OnLine is called by the script host before executing loc. It blocks
// the calling goroutine until Resume or a Step* call is made if loc
// hits an enabled breakpoint, or if the active step mode requires
// pausing here. In Disabled mode it returns immediately without
// taking the lock.
func (c *Coordinator) OnLine(ctx context.Context, loc types.SourceLocation) error {
	if c.mode == types.DebugDisabled {
		return nil
	}

	if bp, hit := c.bps.Hit(loc); hit {
		return c.pauseAndWait(ctx, types.PauseBreakpoint, loc, strconv.FormatInt(bp.ID, 10))
	}

	c.mu.Lock()
	shouldStep := c.shouldStepAtLocked()
	c.mu.Unlock()
	if shouldStep {
		return c.pauseAndWait(ctx, types.PauseStep, loc, "")
	}
	return nil
}

func (c *Coordinator) shouldStepAtLocked() bool {
	switch c.stepMode {
	case types.StepIn:
		return true
	case types.StepOver:
		return c.depth <= c.stepDepth
	case types.StepOut:
		return c.depth < c.stepDepth
	default:
		return false
	}
}

// pauseAndWait transitions to Paused and blocks until a resume call is
// made or Terminate is called, or ctx is cancelled.
func (c *Coordinator) pauseAndWait(ctx context.Context, reason types.PauseReason, loc types.SourceLocation, correlationID string) error {
	c.mu.Lock()
	if c.state == types.RunTerminated {
		c.mu.Unlock()
		return errs.New(errs.Cancelled, "execution terminated")
	}
	c.state = types.RunPaused
	c.reason = reason
	c.at = loc
	c.stepMode = types.StepNone
	ch := make(chan struct{})
	c.resumeCh = ch
	c.mu.Unlock()

	c.logger.Info("debug: paused",
		zap.String("reason", string(reason)), zap.String("source", loc.Source), zap.Int("line", loc.Line),
		zap.String("breakpoint_id", correlationID))

	select {
	case <-ch:
		c.mu.Lock()
		terminated := c.state == types.RunTerminated
		c.mu.Unlock()
		if terminated {
			return errs.New(errs.Cancelled, "execution terminated")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resume continues execution unconditionally (equivalent to DAP's
// "continue").
func (c *Coordinator) Resume() error {
	return c.resumeWith(types.StepNone)
}

// StepOver resumes, pausing again at the next line at the same call
// depth or shallower.
func (c *Coordinator) StepOver() error {
	return c.resumeWith(types.StepOver)
}

// StepIn resumes, pausing again at the very next line regardless of
// depth.
func (c *Coordinator) StepIn() error {
	return c.resumeWith(types.StepIn)
}

// StepOut resumes, pausing again only once the call depth drops below
// the depth StepOut was issued at.
func (c *Coordinator) StepOut() error {
	return c.resumeWith(types.StepOut)
}

func (c *Coordinator) resumeWith(mode types.StepMode) error {
	c.mu.Lock()
	if c.state != types.RunPaused {
		c.mu.Unlock()
		return errs.New(errs.Validation, "cannot resume: not paused")
	}
	c.stepMode = mode
	c.stepDepth = c.depth
	c.state = types.RunRunning
	ch := c.resumeCh
	c.resumeCh = nil
	c.mu.Unlock()

	if ch != nil {
		close(ch)
	}
	return nil
}

// Terminate ends the debug session, releasing any paused goroutine
// with an error rather than letting it resume.
func (c *Coordinator) Terminate() {
	c.mu.Lock()
	c.state = types.RunTerminated
	ch := c.resumeCh
	c.resumeCh = nil
	c.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}
