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

// Package kernelrt assembles one llmspell kernel process: the storage
// backend and every subsystem built over it, wired in the order each
// depends on the last (storage, event bus, registry, session manager
// and artifact store, hook registry, debug coordinator, workflow
// engine, script host bindings, kernel). Both cmd/llmspell's "run" subcommand and the
// standalone cmd/llmspell-kernel binary build a Runtime from here so
// the two entry points can't drift apart.
package kernelrt

import (
	"context"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/bindings"
	"github.com/llmspell/llmspell/internal/config"
	"github.com/llmspell/llmspell/internal/debug"
	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/hooks"
	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/storage"
	"github.com/llmspell/llmspell/internal/types"
	"github.com/llmspell/llmspell/internal/workflow"
)

// Runtime bundles every subsystem a kernel process owns, plus the
// script-host globals built over them, plus the kernel server itself.
type Runtime struct {
	Backend  storage.Backend
	Bus      *eventbus.Bus
	Globals  *bindings.Globals
	Server   *kernel.Server
	SSE      *kernel.SSEBridge
	Admin    *kernel.AdminHandler
	Registry *registry.Registry
	Sessions *session.Manager
	logger   *zap.Logger
}

// stubExecutor satisfies workflow.StepExecutor without invoking any
// agent or tool: running an actual component is the script engine and
// provider layers' job, both of which are out of scope for this
// module. It exists so the workflow engine and its builders are
// reachable and testable from the kernel process without a live LLM
// backend.
type stubExecutor struct {
	registry *registry.Registry
	logger   *zap.Logger
}

func (e stubExecutor) ExecuteStep(_ context.Context, step types.WorkflowStep, input map[string]any) (map[string]any, error) {
	if _, err := e.registry.GetTool(step.Component); err != nil {
		if _, err := e.registry.GetAgent(step.Component); err != nil {
			return nil, errs.New(errs.NotFound, "component %s not registered", step.Component)
		}
	}
	e.logger.Warn("executing step with no bound agent/tool runtime; echoing input",
		zap.String("step", step.Name), zap.String("component", step.Component.String()))
	return input, nil
}

// New opens cfg's storage backend, runs its migrations, constructs
// every subsystem in dependency order, and binds the kernel's five
// channels. Callers are responsible for calling Close.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DSN, logger)
	if err != nil {
		return nil, err
	}
	if err := backend.Migrate(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	bus := eventbus.New(256, logger)
	reg := registry.New(bus, logger)
	sessions := session.NewManager(backend.KV(), bus, logger)
	artifacts, err := session.NewArtifactStore(backend.KV())
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	hookRegistry := hooks.NewRegistry(hooks.CircuitBreakerConfig{}, logger)
	dbg := debug.NewCoordinator(types.DebugMinimal, logger)
	engine := workflow.New(stubExecutor{registry: reg, logger: logger}, hookRegistry, logger)
	globals := bindings.New(reg, sessions, artifacts, bus, hookRegistry, dbg, engine, logger)

	srv, err := kernel.New(cfg.Kernel.IP, bus, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	registerHandlers(srv, logger)

	sse := kernel.NewSSEBridge(bus, logger)
	admin := kernel.NewAdminHandler(reg, sessions)

	return &Runtime{
		Backend:  backend,
		Bus:      bus,
		Globals:  globals,
		Server:   srv,
		SSE:      sse,
		Admin:    admin,
		Registry: reg,
		Sessions: sessions,
		logger:   logger,
	}, nil
}

// Close releases every resource New opened.
func (r *Runtime) Close() {
	r.SSE.Close()
	r.Bus.Close()
	_ = r.Backend.Close()
}

// registerHandlers wires the shell channel's baseline message types.
// execute_request has no script engine behind it in this module (the
// scripting engine is explicitly out of scope): it reports that
// plainly rather than silently no-opping.
func registerHandlers(srv *kernel.Server, logger *zap.Logger) {
	srv.Handle("kernel_info_request", func(_ context.Context, req *types.Message) (*types.Message, error) {
		return &types.Message{
			Header:  types.MessageHeader{Type: "kernel_info_reply"},
			Content: map[string]any{"protocol_version": "1.0"},
		}, nil
	})
	srv.Handle("execute_request", func(_ context.Context, req *types.Message) (*types.Message, error) {
		logger.Info("execute_request received with no script engine bound", zap.String("msg_id", req.Header.ID))
		return &types.Message{
			Header: types.MessageHeader{Type: "execute_reply"},
			Content: map[string]any{
				"status": "error",
				"error":  "no scripting engine is bound to this kernel; use the Workflow/Session/Debug globals directly via internal/bindings",
			},
		}, nil
	})
}
