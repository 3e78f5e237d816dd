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

// Package mysqlstore implements storage.Backend on MySQL/MariaDB via
// database/sql and the go-sql-driver/mysql driver.
package mysqlstore

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
    namespace VARCHAR(255) NOT NULL,
    ` + "`key`" + ` VARCHAR(767) NOT NULL,
    value     BLOB NOT NULL,
    PRIMARY KEY (namespace, ` + "`key`" + `)
) ENGINE=InnoDB;
`

// Backend is a storage.Backend backed by MySQL/MariaDB.
type Backend struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to dsn (a go-sql-driver/mysql DSN) and wraps it as a
// storage.Backend. The caller must call Migrate before first use.
func Open(dsn string, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.Resource, err, "open mysql")
	}
	return &Backend{db: db, logger: logger}, nil
}

func (b *Backend) KV() storage.OrderedKV { return (*kvStore)(b) }

func (b *Backend) Migrate(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, schemaSQL); err != nil {
		return errs.Wrap(errs.Internal, err, "migrate mysql schema")
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return errs.Wrap(errs.Resource, err, "ping mysql")
	}
	return nil
}

func (b *Backend) Close() error { return b.db.Close() }

type kvStore Backend

func (k *kvStore) Close() error { return k.db.Close() }

func (k *kvStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := k.db.QueryRowContext(ctx,
		"SELECT value FROM kv_store WHERE namespace = ? AND `key` = ?", namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "key not found: %s/%s", namespace, key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Resource, err, "get %s/%s", namespace, key)
	}
	return value, nil
}

func (k *kvStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := k.db.ExecContext(ctx,
		"INSERT INTO kv_store (namespace, `key`, value) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		namespace, key, value)
	if err != nil {
		return errs.Wrap(errs.Resource, err, "put %s/%s", namespace, key)
	}
	return nil
}

func (k *kvStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := k.db.ExecContext(ctx,
		"DELETE FROM kv_store WHERE namespace = ? AND `key` = ?", namespace, key)
	if err != nil {
		return errs.Wrap(errs.Resource, err, "delete %s/%s", namespace, key)
	}
	return nil
}

func (k *kvStore) Range(ctx context.Context, namespace, start, end string, limit int) ([]storage.KVEntry, error) {
	query := "SELECT `key`, value FROM kv_store WHERE namespace = ? AND `key` >= ?"
	args := []any{namespace, start}
	if end != "" {
		query += " AND `key` < ?"
		args = append(args, end)
	}
	query += " ORDER BY `key` ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := k.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Resource, err, "range %s", namespace)
	}
	defer rows.Close()

	var out []storage.KVEntry
	for rows.Next() {
		var e storage.KVEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, errs.Wrap(errs.Resource, err, "scan range row")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
