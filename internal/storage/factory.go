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
package storage

import (
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage/memory"
	"github.com/llmspell/llmspell/internal/storage/mysqlstore"
	"github.com/llmspell/llmspell/internal/storage/pgstore"
	"github.com/llmspell/llmspell/internal/storage/sqlitestore"
)

// Open builds a Backend for the named kind ("memory", "sqlite",
// "postgres", "mysql") using dsn as its connection string. The caller
// is responsible for calling Migrate before first use.
func Open(kind, dsn string, logger *zap.Logger) (Backend, error) {
	switch kind {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlitestore.Open(dsn, logger)
	case "postgres":
		return pgstore.Open(dsn, 0, logger)
	case "mysql":
		return mysqlstore.Open(dsn, logger)
	default:
		return nil, errs.New(errs.Validation, "unknown storage backend %q", kind)
	}
}
