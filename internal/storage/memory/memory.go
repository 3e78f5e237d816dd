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

// Package memory implements storage.Backend entirely in process
// memory. It is the default for tests and for single-process kernels
// that do not need to survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage"
)

type Backend struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte // namespace -> key -> value
}

// New returns an empty in-memory storage.Backend.
func New() *Backend {
	return &Backend{data: make(map[string]map[string][]byte)}
}

func (b *Backend) KV() storage.OrderedKV { return b }

func (b *Backend) Migrate(ctx context.Context) error { return nil }

func (b *Backend) Ping(ctx context.Context) error { return nil }

func (b *Backend) Close() error { return nil }

func (b *Backend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ns, ok := b.data[namespace]
	if !ok {
		return nil, errs.New(errs.NotFound, "key not found: %s/%s", namespace, key)
	}
	v, ok := ns[key]
	if !ok {
		return nil, errs.New(errs.NotFound, "key not found: %s/%s", namespace, key)
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (b *Backend) Put(ctx context.Context, namespace, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ns, ok := b.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		b.data[namespace] = ns
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	ns[key] = cp
	return nil
}

func (b *Backend) Delete(ctx context.Context, namespace, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ns, ok := b.data[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

func (b *Backend) Range(ctx context.Context, namespace, start, end string, limit int) ([]storage.KVEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ns, ok := b.data[namespace]
	if !ok {
		return nil, nil
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		if k < start {
			continue
		}
		if end != "" && k >= end {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]storage.KVEntry, 0, len(keys))
	for _, k := range keys {
		v := ns[k]
		cp := make([]byte, len(v))
		copy(cp, v)
		out = append(out, storage.KVEntry{Key: k, Value: cp})
	}
	return out, nil
}
