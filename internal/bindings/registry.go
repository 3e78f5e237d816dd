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

// Discovery exposes the registry as a script-facing global: scripts
// register agent/tool/workflow records and look them up by name or
// capability instead of holding the registry handle directly.
type Discovery struct{ g *Globals }

// Discovery returns the script host's Agent/Tool/Workflow discovery
// global.
func (g *Globals) Discovery() Discovery { return Discovery{g: g} }

func (d Discovery) RegisterAgent(rec types.AgentRecord) (types.ComponentID, error) {
	if d.g.Registry == nil {
		return "", errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.RegisterAgent(rec)
}

func (d Discovery) RegisterTool(schema types.ToolSchema) (types.ComponentID, error) {
	if d.g.Registry == nil {
		return "", errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.RegisterTool(schema)
}

func (d Discovery) RegisterWorkflow(def types.WorkflowDefinition) (types.ComponentID, error) {
	if d.g.Registry == nil {
		return "", errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.RegisterWorkflow(def)
}

func (d Discovery) Agent(name string) (types.AgentRecord, error) {
	if d.g.Registry == nil {
		return types.AgentRecord{}, errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.GetAgentByName(name)
}

func (d Discovery) Tool(id types.ComponentID) (types.ToolRecord, error) {
	if d.g.Registry == nil {
		return types.ToolRecord{}, errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.GetTool(id)
}

func (d Discovery) Workflow(id types.ComponentID) (types.WorkflowDefinition, error) {
	if d.g.Registry == nil {
		return types.WorkflowDefinition{}, errs.New(errs.Validation, "registry not available in this host")
	}
	return d.g.Registry.GetWorkflow(id)
}

// Find runs a capability query across every registered component.
func (d Discovery) Find(q types.CapabilityQuery) []types.ComponentMetadata {
	if d.g.Registry == nil {
		return nil
	}
	return d.g.Registry.Query(q)
}
