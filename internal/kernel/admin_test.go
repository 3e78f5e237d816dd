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
package kernel_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/registry"
	"github.com/llmspell/llmspell/internal/session"
	"github.com/llmspell/llmspell/internal/storage/memory"
	"github.com/llmspell/llmspell/internal/types"
)

func TestAdminHandlerListComponents(t *testing.T) {
	bus := eventbus.New(16, nil)
	reg := registry.New(bus, nil)
	_, err := reg.RegisterTool(types.ToolSchema{
		Metadata: types.ComponentMetadata{Name: "search"},
	})
	require.NoError(t, err)

	admin := kernel.NewAdminHandler(reg, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/components", nil)
	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []types.ComponentMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "search", got[0].Name)
}

func TestAdminHandlerListSessionsWithoutManagerReportsUnavailable(t *testing.T) {
	admin := kernel.NewAdminHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminHandlerListSessions(t *testing.T) {
	bus := eventbus.New(16, nil)
	backend := memory.New()
	mgr := session.NewManager(backend.KV(), bus, nil)

	ctx := context.Background()
	_, err := mgr.Create(ctx, "first session")
	require.NoError(t, err)

	admin := kernel.NewAdminHandler(nil, mgr)
	req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []types.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
}
