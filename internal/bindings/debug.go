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
	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// Debug exposes the debug coordinator as a script-facing global:
// setting breakpoints and stepping through a running script without
// reaching into the coordinator's pause/resume rendezvous directly.
type Debug struct{ g *Globals }

// Debug returns the script host's Debug global.
func (g *Globals) Debug() Debug { return Debug{g: g} }

func (d Debug) SetBreakpoint(source string, line int, condition string, maxHits int64) (types.Breakpoint, error) {
	if d.g.Debug == nil {
		return types.Breakpoint{}, errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.Breakpoints().Add(types.SourceLocation{Source: source, Line: line}, condition, maxHits), nil
}

func (d Debug) RemoveBreakpoint(id int64) bool {
	if d.g.Debug == nil {
		return false
	}
	return d.g.Debug.Breakpoints().Remove(id)
}

func (d Debug) SetBreakpointEnabled(id int64, enabled bool) bool {
	if d.g.Debug == nil {
		return false
	}
	return d.g.Debug.Breakpoints().SetEnabled(id, enabled)
}

func (d Debug) Breakpoints() []types.Breakpoint {
	if d.g.Debug == nil {
		return nil
	}
	return d.g.Debug.Breakpoints().List()
}

func (d Debug) Status() (types.RunStatus, error) {
	if d.g.Debug == nil {
		return types.RunStatus{}, errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.Status(), nil
}

func (d Debug) Resume() error {
	if d.g.Debug == nil {
		return errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.Resume()
}

func (d Debug) StepOver() error {
	if d.g.Debug == nil {
		return errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.StepOver()
}

func (d Debug) StepIn() error {
	if d.g.Debug == nil {
		return errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.StepIn()
}

func (d Debug) StepOut() error {
	if d.g.Debug == nil {
		return errs.New(errs.Validation, "debug coordinator not available in this host")
	}
	return d.g.Debug.StepOut()
}

func (d Debug) Terminate() {
	if d.g.Debug == nil {
		return
	}
	d.g.Debug.Terminate()
}
