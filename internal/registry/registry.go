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

// Package registry is the concurrent catalog of agents, tools, and
// workflows. Components register themselves by (kind, name); callers
// discover them by exact id, by name, or by capability query.
package registry

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/types"
)

// entry is one catalog record: the component's metadata, whichever of
// agent/tool/workflow it is, and its capability set. The registry is
// agnostic to what an agent "is" beyond its record.
type entry struct {
	meta         types.ComponentMetadata
	agent        *types.AgentRecord
	tool         *types.ToolRecord
	workflow     *types.WorkflowDefinition
	capabilities map[string]struct{}
}

// Registry is a thread-safe catalog of registered components.
type Registry struct {
	mu      sync.RWMutex
	byID    map[types.ComponentID]*entry
	byName  map[string]types.ComponentID // "<kind>:<name>" -> id
	logger  *zap.Logger
	bus     *eventbus.Bus
}

// New constructs an empty Registry. bus may be nil; if set, every
// registration and deregistration is published on it.
func New(bus *eventbus.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byID:   make(map[types.ComponentID]*entry),
		byName: make(map[string]types.ComponentID),
		logger: logger,
		bus:    bus,
	}
}

func nameKey(kind types.ComponentKind, name string) string {
	return string(kind) + ":" + name
}

// RegisterAgent adds or replaces an agent record, keyed by name.
func (r *Registry) RegisterAgent(rec types.AgentRecord) (types.ComponentID, error) {
	if rec.Metadata.Name == "" {
		return "", errs.New(errs.Validation, "agent name must not be empty")
	}
	rec.Metadata.Kind = types.KindAgent
	id := types.NewComponentID(types.KindAgent, rec.Metadata.Name)
	rec.Metadata.ID = id
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Metadata.CreatedAt.IsZero() {
		rec.Metadata.CreatedAt = rec.CreatedAt
	}
	rec.Metadata.UpdatedAt = rec.UpdatedAt

	r.mu.Lock()
	r.byID[id] = &entry{meta: rec.Metadata, agent: &rec, capabilities: toSet(rec.Capabilities)}
	r.byName[nameKey(types.KindAgent, rec.Metadata.Name)] = id
	r.mu.Unlock()

	r.publish(types.KindAgent, id, eventbus.Created)
	return id, nil
}

// RegisterTool adds or replaces a tool record, keyed by name.
func (r *Registry) RegisterTool(schema types.ToolSchema) (types.ComponentID, error) {
	if schema.Metadata.Name == "" {
		return "", errs.New(errs.Validation, "tool name must not be empty")
	}
	schema.Metadata.Kind = types.KindTool
	id := types.NewComponentID(types.KindTool, schema.Metadata.Name)
	schema.Metadata.ID = id
	now := time.Now()

	r.mu.Lock()
	existing, ok := r.byID[id]
	created := now
	if ok && existing.tool != nil {
		created = existing.tool.CreatedAt
	}
	schema.Metadata.CreatedAt = created
	schema.Metadata.UpdatedAt = now
	r.byID[id] = &entry{
		meta:         schema.Metadata,
		tool:         &types.ToolRecord{Schema: schema, CreatedAt: created, UpdatedAt: now},
		capabilities: toSet(schema.Metadata.Tags),
	}
	r.byName[nameKey(types.KindTool, schema.Metadata.Name)] = id
	r.mu.Unlock()

	r.publish(types.KindTool, id, eventbus.Created)
	return id, nil
}

// RegisterWorkflow adds or replaces a workflow definition, keyed by name.
func (r *Registry) RegisterWorkflow(def types.WorkflowDefinition) (types.ComponentID, error) {
	if def.Metadata.Name == "" {
		return "", errs.New(errs.Validation, "workflow name must not be empty")
	}
	def.Metadata.Kind = types.KindWorkflow
	id := types.NewComponentID(types.KindWorkflow, def.Metadata.Name)
	def.Metadata.ID = id
	now := time.Now()
	r.mu.Lock()
	if existing, ok := r.byID[id]; ok && !existing.meta.CreatedAt.IsZero() {
		def.Metadata.CreatedAt = existing.meta.CreatedAt
	} else {
		def.Metadata.CreatedAt = now
	}
	def.Metadata.UpdatedAt = now
	r.byID[id] = &entry{meta: def.Metadata, workflow: &def, capabilities: toSet(def.Metadata.Tags)}
	r.byName[nameKey(types.KindWorkflow, def.Metadata.Name)] = id
	r.mu.Unlock()

	r.publish(types.KindWorkflow, id, eventbus.Created)
	return id, nil
}

// GetAgent looks up an agent record by id.
func (r *Registry) GetAgent(id types.ComponentID) (types.AgentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok || e.agent == nil {
		return types.AgentRecord{}, errs.New(errs.NotFound, "agent %s not found", id)
	}
	return *e.agent, nil
}

// GetAgentByName looks up an agent record by name.
func (r *Registry) GetAgentByName(name string) (types.AgentRecord, error) {
	r.mu.RLock()
	id, ok := r.byName[nameKey(types.KindAgent, name)]
	r.mu.RUnlock()
	if !ok {
		return types.AgentRecord{}, errs.New(errs.NotFound, "agent %q not found", name)
	}
	return r.GetAgent(id)
}

// GetTool looks up a tool record by id.
func (r *Registry) GetTool(id types.ComponentID) (types.ToolRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok || e.tool == nil {
		return types.ToolRecord{}, errs.New(errs.NotFound, "tool %s not found", id)
	}
	return *e.tool, nil
}

// GetWorkflow looks up a workflow definition by id.
func (r *Registry) GetWorkflow(id types.ComponentID) (types.WorkflowDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok || e.workflow == nil {
		return types.WorkflowDefinition{}, errs.New(errs.NotFound, "workflow %s not found", id)
	}
	return *e.workflow, nil
}

// Deregister removes a component by id.
func (r *Registry) Deregister(id types.ComponentID) error {
	r.mu.Lock()
	e, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return errs.New(errs.NotFound, "component %s not found", id)
	}
	delete(r.byID, id)
	delete(r.byName, nameKey(e.meta.Kind, e.meta.Name))
	kind := e.meta.Kind
	r.mu.Unlock()

	r.publish(kind, id, eventbus.Deleted)
	return nil
}

// Query returns components matching q, sorted by name ascending,
// applying q's capability superset match: every capability in
// q.Capabilities must be present on the candidate.
func (r *Registry) Query(q types.CapabilityQuery) []types.ComponentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []types.ComponentMetadata
	for _, e := range r.byID {
		if q.Kind != "" && e.meta.Kind != q.Kind {
			continue
		}
		if q.NamePrefix != "" && !strings.HasPrefix(e.meta.Name, q.NamePrefix) {
			continue
		}
		if !hasAllCapabilities(e.capabilities, q.Capabilities) {
			continue
		}
		if !hasAllTags(e.meta.Tags, q.Tags) {
			continue
		}
		matches = append(matches, e.meta)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })

	offset := q.Offset
	if offset > len(matches) {
		offset = len(matches)
	}
	matches = matches[offset:]
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches
}

func hasAllCapabilities(have map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

func hasAllTags(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := toSet(have)
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

func (r *Registry) publish(kind types.ComponentKind, id types.ComponentID, t eventbus.EventType) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(eventbus.Event{
		Topic:   "registry." + string(kind) + "." + t.String(),
		Type:    t,
		Payload: id,
	})
}
