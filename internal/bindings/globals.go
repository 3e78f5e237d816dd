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

// Package bindings is the script host's global object surface: the
// Go-side API a scripting engine's Agent/Tool/Workflow/Session/
// Artifact/Event/Debug globals delegate to. The scripting engine
// itself — parsing and running script source — is out of scope here;
// this package only owns what those globals can call into.
package bindings

import (
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/debug"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/hooks"
	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/workflow"
)

// Globals aggregates every subsystem a script host binds into its
// global namespace. It is deliberately a flat struct of already-built
// components rather than a constructor that wires them itself, so the
// process entry point controls lifecycle and configuration.
type Globals struct {
	Registry  *registry.Registry
	Sessions  *session.Manager
	Artifacts *session.ArtifactStore
	Events    *eventbus.Bus
	Hooks     *hooks.Registry
	Debug     *debug.Coordinator
	Workflows *workflow.Engine
	Logger    *zap.Logger
}

// New builds a Globals from already-constructed subsystem instances.
// Any field may be left nil if the host doesn't expose that global
// (e.g. a headless batch runner with no debug coordinator).
func New(reg *registry.Registry, sessions *session.Manager, artifacts *session.ArtifactStore, bus *eventbus.Bus, hookRegistry *hooks.Registry, dbg *debug.Coordinator, engine *workflow.Engine, logger *zap.Logger) *Globals {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Globals{
		Registry: reg, Sessions: sessions, Artifacts: artifacts,
		Events: bus, Hooks: hookRegistry, Debug: dbg, Workflows: engine, Logger: logger,
	}
}
