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
package session

import "context"

// Decision is a policy manager's verdict on a proposed session action.
type Decision struct {
	Allowed bool
	Reason  string
}

// Policy evaluates whether a session action (e.g. "suspend", "archive")
// should be allowed. Multiple policies compose via PolicyManager:
// every policy must approve for the action to proceed.
type Policy func(ctx context.Context, sessionID, action string) Decision

// PolicyManager composes a list of policies into one approve/deny call.
type PolicyManager struct {
	policies []Policy
}

// NewPolicyManager builds a PolicyManager from the given policies,
// evaluated in order; the first denial short-circuits the rest.
func NewPolicyManager(policies ...Policy) *PolicyManager {
	return &PolicyManager{policies: policies}
}

// Evaluate runs every policy against (sessionID, action) and returns
// the first denial, or an allow decision if every policy approves.
func (p *PolicyManager) Evaluate(ctx context.Context, sessionID, action string) Decision {
	for _, policy := range p.policies {
		d := policy(ctx, sessionID, action)
		if !d.Allowed {
			return d
		}
	}
	return Decision{Allowed: true}
}
