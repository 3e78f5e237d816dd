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
package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/provider"
	"github.com/llmspell/llmspell/internal/storage"
	"github.com/llmspell/llmspell/internal/types"
)

type stubLLM struct{ name, model string }

func (s stubLLM) Chat(context.Context, []provider.Message, []types.ToolSchema) (*provider.Response, error) {
	return &provider.Response{Content: "stub reply"}, nil
}
func (s stubLLM) Name() string  { return s.name }
func (s stubLLM) Model() string { return s.model }

type streamingStubLLM struct{ stubLLM }

func (s streamingStubLLM) ChatStream(context.Context, []provider.Message, []types.ToolSchema, provider.TokenCallback) (*provider.Response, error) {
	return &provider.Response{Content: "stub stream"}, nil
}

func TestResolveLLMReturnsErrorWhenNoneRegistered(t *testing.T) {
	r := provider.New()
	_, err := r.ResolveLLM("")
	assert.Error(t, err)
}

func TestResolveLLMFallsBackToFirstRegistered(t *testing.T) {
	r := provider.New()
	r.RegisterLLM("anthropic", stubLLM{name: "anthropic", model: "claude"})
	r.RegisterLLM("ollama", stubLLM{name: "ollama", model: "llama"})

	got, err := r.ResolveLLM("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", got.Name())
}

func TestResolveLLMHonorsExplicitDefault(t *testing.T) {
	r := provider.New()
	r.RegisterLLM("anthropic", stubLLM{name: "anthropic"})
	r.RegisterLLM("ollama", stubLLM{name: "ollama"})
	r.SetDefaultLLM("ollama")

	got, err := r.ResolveLLM("")
	require.NoError(t, err)
	assert.Equal(t, "ollama", got.Name())
}

func TestResolveLLMByNameBypassesDefault(t *testing.T) {
	r := provider.New()
	r.RegisterLLM("anthropic", stubLLM{name: "anthropic"})
	r.RegisterLLM("ollama", stubLLM{name: "ollama"})

	got, err := r.ResolveLLM("ollama")
	require.NoError(t, err)
	assert.Equal(t, "ollama", got.Name())
}

func TestSupportsStreamingDetectsInterface(t *testing.T) {
	assert.False(t, provider.SupportsStreaming(stubLLM{}))
	assert.True(t, provider.SupportsStreaming(streamingStubLLM{}))
}

func TestResolveVectorAndGraphStoreErrorsWhenUnregistered(t *testing.T) {
	r := provider.New()
	_, err := r.ResolveVectorStore("pg")
	assert.Error(t, err)
	_, err = r.ResolveGraphStore("neo4j")
	assert.Error(t, err)
}

func TestRegisterVectorAndGraphStoreResolve(t *testing.T) {
	r := provider.New()
	r.RegisterVectorStore("pg", stubVectorStore{})
	r.RegisterGraphStore("neo4j", stubGraphStore{})

	_, err := r.ResolveVectorStore("pg")
	assert.NoError(t, err)
	_, err = r.ResolveGraphStore("neo4j")
	assert.NoError(t, err)
}

type stubVectorStore struct{}

func (stubVectorStore) Upsert(context.Context, string, []storage.VectorRecord) error { return nil }
func (stubVectorStore) Query(context.Context, string, []float32, int) ([]storage.VectorMatch, error) {
	return nil, nil
}
func (stubVectorStore) Delete(context.Context, string, []string) error { return nil }

type stubGraphStore struct{}

func (stubGraphStore) AddNode(context.Context, string, string, map[string]any) error { return nil }
func (stubGraphStore) AddEdge(context.Context, string, storage.GraphEdge) error       { return nil }
func (stubGraphStore) Neighbors(context.Context, string, string) ([]storage.GraphEdge, error) {
	return nil, nil
}
func (stubGraphStore) RemoveNode(context.Context, string, string) error { return nil }
