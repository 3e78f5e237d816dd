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

// Package storage defines the backend-independent persistence traits
// llmspell components are built against: an ordered key/value store
// for session and artifact state, and optional vector/graph stores for
// retrieval-augmented components. Concrete backends (memory, sqlite,
// postgres, mysql) live in subpackages and are selected at bootstrap
// by internal/config.
package storage

import "context"

// KVEntry is one key/value pair as returned by a range scan, ordered
// lexicographically by Key within a Namespace.
type KVEntry struct {
	Key   string
	Value []byte
}

// OrderedKV is a namespaced, lexicographically-ordered key/value
// store. Every operation is scoped to a tenant (namespace) so a single
// backend can serve multiple sessions or agents without cross-talk.
type OrderedKV interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	// Range returns entries with Key in [start, end) ordered ascending.
	// An empty end means "no upper bound".
	Range(ctx context.Context, namespace, start, end string, limit int) ([]KVEntry, error)
	Close() error
}

// VectorRecord is one embedding with its associated payload.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// VectorMatch is a VectorStore.Query result: a record plus its
// similarity score.
type VectorMatch struct {
	Record VectorRecord
	Score  float32
}

// VectorStore supports nearest-neighbor search over embeddings scoped
// to a namespace. Concrete implementations are explicitly out of
// scope for this module: callers supply their own via the Provider
// registry described in internal/provider.
type VectorStore interface {
	Upsert(ctx context.Context, namespace string, records []VectorRecord) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]VectorMatch, error)
	Delete(ctx context.Context, namespace string, ids []string) error
}

// GraphEdge is one directed edge between two node ids.
type GraphEdge struct {
	From, To string
	Label    string
	Weight   float64
}

// GraphStore supports node/edge storage for components that model
// relationships between agents, tools, or artifacts. Like VectorStore,
// concrete implementations are supplied externally.
type GraphStore interface {
	AddNode(ctx context.Context, namespace, id string, attrs map[string]any) error
	AddEdge(ctx context.Context, namespace string, edge GraphEdge) error
	Neighbors(ctx context.Context, namespace, id string) ([]GraphEdge, error)
	RemoveNode(ctx context.Context, namespace, id string) error
}

// Backend composes the stores a kernel process needs behind one
// handle, so bootstrap code configures a single backend rather than
// wiring each trait independently.
type Backend interface {
	KV() OrderedKV
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
