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
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/types"
)

// RetentionPolicy bounds how long a completed or failed session is
// kept before the Reaper archives and deletes it.
type RetentionPolicy struct {
	MaxAge     time.Duration
	ArchiveDir string
}

// Reaper periodically sweeps sessions past their retention window,
// writing each session record and its artifacts' metadata to ArchiveDir
// as a single JSON file (nothing is written when ArchiveDir is empty)
// before deleting the session record. Artifact metadata and content are
// not removed from the ArtifactStore. It runs on a cron schedule rather than a
// plain time.Ticker so its cadence reads the same way an operator's
// deployment schedule does.
type Reaper struct {
	manager *Manager
	store   *ArtifactStore
	policy  RetentionPolicy
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewReaper builds a Reaper over manager and store.
func NewReaper(manager *Manager, store *ArtifactStore, policy RetentionPolicy, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reaper{manager: manager, store: store, policy: policy, logger: logger, cron: cron.New()}
}

// Start schedules the sweep on spec (standard five-field cron syntax,
// e.g. "0 * * * *" for hourly) and begins running it in the background.
func (r *Reaper) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		if err := r.Sweep(context.Background()); err != nil {
			r.logger.Error("session reaper sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for any in-flight sweep to finish.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one retention pass immediately: any Completed or Failed
// session older than policy.MaxAge is archived then deleted.
func (r *Reaper) Sweep(ctx context.Context) error {
	sessions, err := r.manager.List(ctx)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-r.policy.MaxAge)
	for _, s := range sessions {
		if s.State != types.SessionCompleted && s.State != types.SessionFailed {
			continue
		}
		if s.UpdatedAt.After(cutoff) {
			continue
		}
		if err := r.archive(ctx, s); err != nil {
			r.logger.Error("archive session before reap", zap.String("session_id", s.ID), zap.Error(err))
			continue
		}
		if err := r.manager.Delete(ctx, s.ID); err != nil {
			r.logger.Error("delete session after archive", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	return nil
}

type archiveRecord struct {
	Session   types.Session              `json:"session"`
	Artifacts []types.ArtifactMetadata   `json:"artifacts"`
}

func (r *Reaper) archive(ctx context.Context, s types.Session) error {
	if r.policy.ArchiveDir == "" {
		return nil
	}
	artifacts, err := r.store.List(ctx, s.ID)
	if err != nil {
		return err
	}
	record := archiveRecord{Session: s, Artifacts: artifacts}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.policy.ArchiveDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.policy.ArchiveDir, s.ID+".json")
	return os.WriteFile(path, data, 0o644)
}
