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

// Package provider is the bridge-discovery façade for everything a
// running script needs but this module does not itself implement:
// LLM backends, vector stores, and graph stores. It defines the
// interfaces and a name-keyed registry those concrete backends
// plug into; no concrete LLM client, vector store, or graph store
// ships here.
package provider

import (
	"context"
	"sync"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage"
	"github.com/llmspell/llmspell/internal/types"
)

// Message is one turn in a chat-style LLM conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage tracks token accounting for one LLM call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is an LLM's reply to a Chat call.
type Response struct {
	Content  string         `json:"content"`
	Usage    Usage          `json:"usage"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TokenCallback receives one streamed token/chunk. It must be
// lightweight and non-blocking; the provider calls it synchronously.
type TokenCallback func(token string)

// LLM is the interface every pluggable LLM backend (Anthropic,
// Bedrock, Ollama, Azure, ...) implements. This module ships none of
// them; a host process registers concrete implementations with a
// Registry at startup.
type LLM interface {
	Chat(ctx context.Context, messages []Message, tools []types.ToolSchema) (*Response, error)
	Name() string
	Model() string
}

// StreamingLLM extends LLM with token streaming support. Use
// SupportsStreaming to check whether a resolved LLM implements it.
type StreamingLLM interface {
	LLM
	ChatStream(ctx context.Context, messages []Message, tools []types.ToolSchema, onToken TokenCallback) (*Response, error)
}

// SupportsStreaming reports whether llm also implements StreamingLLM.
func SupportsStreaming(llm LLM) bool {
	_, ok := llm.(StreamingLLM)
	return ok
}

// Registry holds named instances of LLM/VectorStore/GraphStore
// backends and resolves a default when a caller doesn't name one,
// mirroring the teacher's merge-LLM fallback: explicit configuration
// first, first-registered candidate second, failure third. VectorStore
// and GraphStore are internal/storage's traits: this module still
// ships no concrete implementation of either, only the place a host
// registers one.
type Registry struct {
	mu         sync.RWMutex
	llms       map[string]LLM
	vectors    map[string]storage.VectorStore
	graphs     map[string]storage.GraphStore
	order      []string // llm registration order, for deterministic fallback
	defaultLLM string
}

// New constructs an empty provider Registry.
func New() *Registry {
	return &Registry{
		llms:    make(map[string]LLM),
		vectors: make(map[string]storage.VectorStore),
		graphs:  make(map[string]storage.GraphStore),
	}
}

// RegisterLLM adds or replaces a named LLM backend.
func (r *Registry) RegisterLLM(name string, llm LLM) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.llms[name]; !exists {
		r.order = append(r.order, name)
	}
	r.llms[name] = llm
}

// SetDefaultLLM pins which registered LLM ResolveLLM("") returns,
// overriding first-registered fallback.
func (r *Registry) SetDefaultLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultLLM = name
}

// ResolveLLM returns the named LLM, or the configured/first-registered
// default when name is empty. Returns an error if nothing is
// registered at all, since a script calling an LLM global with no
// backend wired is a configuration mistake, not a soft failure.
func (r *Registry) ResolveLLM(name string) (LLM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		llm, ok := r.llms[name]
		if !ok {
			return nil, errs.New(errs.NotFound, "llm provider %q not registered", name)
		}
		return llm, nil
	}
	if r.defaultLLM != "" {
		if llm, ok := r.llms[r.defaultLLM]; ok {
			return llm, nil
		}
	}
	if len(r.order) == 0 {
		return nil, errs.New(errs.NotFound, "no llm provider registered")
	}
	return r.llms[r.order[0]], nil
}

// RegisterVectorStore adds or replaces a named vector store backend.
func (r *Registry) RegisterVectorStore(name string, store storage.VectorStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vectors[name] = store
}

// ResolveVectorStore returns the named vector store backend.
func (r *Registry) ResolveVectorStore(name string) (storage.VectorStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.vectors[name]
	if !ok {
		return nil, errs.New(errs.NotFound, "vector store %q not registered", name)
	}
	return store, nil
}

// RegisterGraphStore adds or replaces a named graph store backend.
func (r *Registry) RegisterGraphStore(name string, store storage.GraphStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[name] = store
}

// ResolveGraphStore returns the named graph store backend.
func (r *Registry) ResolveGraphStore(name string) (storage.GraphStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.graphs[name]
	if !ok {
		return nil, errs.New(errs.NotFound, "graph store %q not registered", name)
	}
	return store, nil
}
