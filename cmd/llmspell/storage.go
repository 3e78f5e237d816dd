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
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/llmspell/llmspell/internal/applog"
	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and move data in the configured storage backend",
}

var storageExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Dump every namespace this module writes to as newline-delimited JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageExport,
}

var storageImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a file previously produced by storage export",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageImport,
}

// storageMigrateCmd is a stub: a starting kernel applies schema
// migrations itself (kernelrt.New calls Backend.Migrate right after
// storage.Open), so there is nothing for an operator to trigger by
// hand. It is reserved for an explicit-version migration workflow.
var storageMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Reserved for explicit schema migrations (currently a no-op; a starting kernel migrates its backend)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "storage migrate: schema migrations already run when a kernel starts; nothing to do")
		return nil
	},
}

func init() {
	storageCmd.AddCommand(storageExportCmd)
	storageCmd.AddCommand(storageImportCmd)
	storageCmd.AddCommand(storageMigrateCmd)
}

// exportedNamespaces lists every OrderedKV namespace a component in
// this module writes to. Kept here rather than discovered dynamically
// because OrderedKV has no "list namespaces" operation.
var exportedNamespaces = []string{"sessions", "artifact_meta", "artifact_blob"}

type exportRecord struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"` // base64
}

func runStorageExport(cmd *cobra.Command, args []string) error {
	logger, err := applog.New(*newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DSN, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	out, err := os.Create(args[0])
	if err != nil {
		return errs.Wrap(errs.Internal, err, "create export file")
	}
	defer out.Close()

	ctx := context.Background()
	enc := json.NewEncoder(out)
	count := 0
	for _, ns := range exportedNamespaces {
		entries, err := backend.KV().Range(ctx, ns, "", "", 0)
		if err != nil {
			return errs.Wrap(errs.Internal, err, "range namespace %s", ns)
		}
		for _, e := range entries {
			rec := exportRecord{Namespace: ns, Key: e.Key, Value: base64.StdEncoding.EncodeToString(e.Value)}
			if err := enc.Encode(rec); err != nil {
				return errs.Wrap(errs.Internal, err, "write export record")
			}
			count++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d records across %d namespaces to %s\n", count, len(exportedNamespaces), args[0])
	return nil
}

func runStorageImport(cmd *cobra.Command, args []string) error {
	logger, err := applog.New(*newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DSN, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	in, err := os.Open(args[0])
	if err != nil {
		return errs.Wrap(errs.Internal, err, "open import file")
	}
	defer in.Close()

	ctx := context.Background()
	dec := json.NewDecoder(in)
	count := 0
	for dec.More() {
		var rec exportRecord
		if err := dec.Decode(&rec); err != nil {
			return errs.Wrap(errs.Validation, err, "decode import record %d", count)
		}
		value, err := base64.StdEncoding.DecodeString(rec.Value)
		if err != nil {
			return errs.Wrap(errs.Validation, err, "decode value for %s/%s", rec.Namespace, rec.Key)
		}
		if err := backend.KV().Put(ctx, rec.Namespace, rec.Key, value); err != nil {
			return errs.Wrap(errs.Internal, err, "put %s/%s", rec.Namespace, rec.Key)
		}
		count++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %s\n", count, args[0])
	return nil
}
