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

// Package kernel's admin surface exposes read-only registry and
// session introspection over plain HTTP/JSON, for operators and
// dashboards that have no business holding a signed shell connection.
// A generated-stub gRPC+gateway service was the original plan (see
// SPEC_FULL.md §4.11), but this module carries no .proto/codegen
// toolchain, so a hand-rolled grpc.ServiceDesc would have to duplicate
// by hand exactly what protoc-gen-go normally generates — worse than
// the plain-HTTP handler it would replace. net/http's ServeMux serves
// the same read-only introspection need with nothing hand-generated.
package kernel

import (
	"encoding/json"
	"net/http"

	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/types"
)

// AdminHandler serves read-only introspection of a running kernel's
// registry and session manager. It never mutates state: every route
// is a GET.
type AdminHandler struct {
	mux      *http.ServeMux
	registry *registry.Registry
	sessions *session.Manager
}

// NewAdminHandler builds the admin mux over reg and sessions. Either
// may be nil, in which case the corresponding routes report a 503.
func NewAdminHandler(reg *registry.Registry, sessions *session.Manager) *AdminHandler {
	a := &AdminHandler{mux: http.NewServeMux(), registry: reg, sessions: sessions}
	a.mux.HandleFunc("/admin/components", a.listComponents)
	a.mux.HandleFunc("/admin/sessions", a.listSessions)
	return a
}

func (a *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *AdminHandler) listComponents(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		http.Error(w, "registry not available", http.StatusServiceUnavailable)
		return
	}
	q := types.CapabilityQuery{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		q.Kind = types.ComponentKind(kind)
	}
	if prefix := r.URL.Query().Get("name_prefix"); prefix != "" {
		q.NamePrefix = prefix
	}
	writeJSON(w, a.registry.Query(q))
}

func (a *AdminHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		http.Error(w, "session manager not available", http.StatusServiceUnavailable)
		return
	}
	sessions, err := a.sessions.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, sessions)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
