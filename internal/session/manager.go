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

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/storage"
	"github.com/llmspell/llmspell/internal/types"
)

const sessionNamespace = "sessions"

// Manager owns session lifecycle: creation, lookup, state transitions,
// and listing. Persistence goes through a storage.OrderedKV so session
// state survives process restart under any configured backend.
type Manager struct {
	kv     storage.OrderedKV
	bus    *eventbus.Bus
	logger *zap.Logger
}

// NewManager constructs a Manager over kv. bus may be nil.
func NewManager(kv storage.OrderedKV, bus *eventbus.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{kv: kv, bus: bus, logger: logger}
}

// Create starts a new active session.
func (m *Manager) Create(ctx context.Context, title string) (types.Session, error) {
	now := time.Now()
	s := types.Session{
		ID:        uuid.NewString(),
		Title:     title,
		State:     types.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.put(ctx, s); err != nil {
		return types.Session{}, err
	}
	m.publish(s.ID, eventbus.Created)
	return s, nil
}

// Get looks up a session by id.
func (m *Manager) Get(ctx context.Context, id string) (types.Session, error) {
	raw, err := m.kv.Get(ctx, sessionNamespace, id)
	if err != nil {
		return types.Session{}, errs.Wrap(errs.KindOf(err), err, "get session %s", id)
	}
	var s types.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Session{}, errs.Wrap(errs.Internal, err, "decode session %s", id)
	}
	return s, nil
}

// List returns every session, ordered by id.
func (m *Manager) List(ctx context.Context) ([]types.Session, error) {
	entries, err := m.kv.Range(ctx, sessionNamespace, "", "", 0)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list sessions")
	}
	out := make([]types.Session, 0, len(entries))
	for _, e := range entries {
		var s types.Session
		if err := json.Unmarshal(e.Value, &s); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "decode session %s", e.Key)
		}
		out = append(out, s)
	}
	return out, nil
}

// Transition moves a session to a new state, validating the lifecycle
// graph: Active<->Suspended, Active->Completed, Active->Failed,
// Suspended->Failed.
func (m *Manager) Transition(ctx context.Context, id string, to types.SessionState) (types.Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return types.Session{}, err
	}
	if !validTransition(s.State, to) {
		return types.Session{}, errs.New(errs.Validation, "invalid session transition %s -> %s", s.State, to)
	}
	s.State = to
	s.UpdatedAt = time.Now()
	if err := m.put(ctx, s); err != nil {
		return types.Session{}, err
	}
	m.publish(id, eventbus.Updated)
	return s, nil
}

func validTransition(from, to types.SessionState) bool {
	switch from {
	case types.SessionActive:
		return to == types.SessionSuspended || to == types.SessionCompleted || to == types.SessionFailed
	case types.SessionSuspended:
		return to == types.SessionActive || to == types.SessionFailed
	default:
		return false
	}
}

// Delete removes a session entirely, without archival. Callers that
// want retention-policy archival should use the Reaper instead.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.kv.Delete(ctx, sessionNamespace, id); err != nil {
		return errs.Wrap(errs.Internal, err, "delete session %s", id)
	}
	m.publish(id, eventbus.Deleted)
	return nil
}

func (m *Manager) put(ctx context.Context, s types.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode session %s", s.ID)
	}
	if err := m.kv.Put(ctx, sessionNamespace, s.ID, raw); err != nil {
		return errs.Wrap(errs.Internal, err, "store session %s", s.ID)
	}
	return nil
}

func (m *Manager) publish(id string, t eventbus.EventType) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(eventbus.Event{Topic: "session." + id + "." + t.String(), Type: t, Payload: id})
}
