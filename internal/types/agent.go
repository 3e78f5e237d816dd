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
package types

import "time"

// AgentStatus is the lifecycle state of a registered agent instance.
type AgentStatus string

const (
	AgentStatusIdle    AgentStatus = "idle"
	AgentStatusRunning AgentStatus = "running"
	AgentStatusError   AgentStatus = "error"
	AgentStatusStopped AgentStatus = "stopped"
)

// AgentRecord is the registry's view of an agent: identity plus the
// mutable operational state the registry tracks on its behalf.
type AgentRecord struct {
	Metadata     ComponentMetadata `json:"metadata"`
	Provider     string            `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Status       AgentStatus       `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	LastError    string            `json:"last_error,omitempty"`
	Invocations  int64             `json:"invocations"`
}

// ToolSecurityLevel bounds the side effects a tool may perform. Hosts
// use it to gate which tools a sandboxed script may call.
type ToolSecurityLevel string

const (
	SecuritySafe        ToolSecurityLevel = "safe"
	SecurityRestricted  ToolSecurityLevel = "restricted"
	SecurityPrivileged  ToolSecurityLevel = "privileged"
)

// ToolSchema describes a tool's callable contract: the JSON schema its
// parameters must satisfy and the security level required to invoke it.
type ToolSchema struct {
	Metadata    ComponentMetadata `json:"metadata"`
	Parameters  map[string]any    `json:"parameters"`
	Returns     map[string]any    `json:"returns,omitempty"`
	Security    ToolSecurityLevel `json:"security"`
	Idempotent  bool              `json:"idempotent"`
}

// ToolRecord is the registry's view of a registered tool.
type ToolRecord struct {
	Schema    ToolSchema `json:"schema"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	CallCount int64      `json:"call_count"`
	LastError string     `json:"last_error,omitempty"`
}

// CapabilityQuery selects components by kind, required capability
// superset, and optional tag/name filters.
type CapabilityQuery struct {
	Kind         ComponentKind
	Capabilities []string
	Tags         []string
	NamePrefix   string
	Offset       int
	Limit        int
}
