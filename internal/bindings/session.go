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
	"context"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// Session exposes the Manager as a script-facing global: scripts work
// with plain ids and titles, never the underlying storage handle.
type Session struct{ g *Globals }

// Session returns the script host's Session global.
func (g *Globals) Session() Session { return Session{g: g} }

func (s Session) Create(ctx context.Context, title string) (types.Session, error) {
	if s.g.Sessions == nil {
		return types.Session{}, errs.New(errs.Validation, "session manager not available in this host")
	}
	return s.g.Sessions.Create(ctx, title)
}

func (s Session) Get(ctx context.Context, id string) (types.Session, error) {
	if s.g.Sessions == nil {
		return types.Session{}, errs.New(errs.Validation, "session manager not available in this host")
	}
	return s.g.Sessions.Get(ctx, id)
}

func (s Session) List(ctx context.Context) ([]types.Session, error) {
	if s.g.Sessions == nil {
		return nil, errs.New(errs.Validation, "session manager not available in this host")
	}
	return s.g.Sessions.List(ctx)
}

func (s Session) Transition(ctx context.Context, id string, to types.SessionState) (types.Session, error) {
	if s.g.Sessions == nil {
		return types.Session{}, errs.New(errs.Validation, "session manager not available in this host")
	}
	return s.g.Sessions.Transition(ctx, id, to)
}

func (s Session) Delete(ctx context.Context, id string) error {
	if s.g.Sessions == nil {
		return errs.New(errs.Validation, "session manager not available in this host")
	}
	return s.g.Sessions.Delete(ctx, id)
}

// Artifact exposes the ArtifactStore as a script-facing global.
type Artifact struct{ g *Globals }

// Artifact returns the script host's Artifact global.
func (g *Globals) Artifact() Artifact { return Artifact{g: g} }

func (a Artifact) Put(ctx context.Context, sessionID, name, mimeType string, content []byte, tags map[string]string) (types.ArtifactMetadata, error) {
	if a.g.Artifacts == nil {
		return types.ArtifactMetadata{}, errs.New(errs.Validation, "artifact store not available in this host")
	}
	return a.g.Artifacts.Put(ctx, sessionID, name, mimeType, content, tags)
}

func (a Artifact) Get(ctx context.Context, id types.ArtifactID) ([]byte, types.ArtifactMetadata, error) {
	if a.g.Artifacts == nil {
		return nil, types.ArtifactMetadata{}, errs.New(errs.Validation, "artifact store not available in this host")
	}
	return a.g.Artifacts.Get(ctx, id)
}

func (a Artifact) List(ctx context.Context, sessionID string) ([]types.ArtifactMetadata, error) {
	if a.g.Artifacts == nil {
		return nil, errs.New(errs.Validation, "artifact store not available in this host")
	}
	return a.g.Artifacts.List(ctx, sessionID)
}
