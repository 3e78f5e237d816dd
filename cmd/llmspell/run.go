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
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/applog"
	"github.com/llmspell/llmspell/internal/config"
	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/kernelrt"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a kernel and keep it running until interrupted",
	Long: `run starts a kernel process: it opens the configured storage backend,
brings up the registry, session, hook, workflow, and debug subsystems, binds
the five kernel channels, and writes a connection file other processes (repl,
IDE clients) use to find it.

Press Ctrl+C to shut down gracefully; press it again to force exit.`,
	RunE: runKernel,
}

func runKernel(cmd *cobra.Command, args []string) error {
	logger, err := applog.New(*newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Once the first signal cancels ctx, restore default signal handling
	// so a second Ctrl+C terminates the process immediately.
	context.AfterFunc(ctx, stop)

	rt, err := kernelrt.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	connPath := kernelFlag
	if connPath == "" {
		connPath = filepath.Join(config.SubDir("kernels"), fmt.Sprintf("kernel-%d.json", os.Getpid()))
	}
	if err := os.MkdirAll(filepath.Dir(connPath), 0o755); err != nil {
		return err
	}
	info := rt.Server.ConnectionInfo(cfg.Kernel.IP, fmt.Sprintf("llmspell-%d", os.Getpid()))
	if err := kernel.SaveConnectionFile(connPath, info); err != nil {
		return err
	}
	defer func() { _ = os.Remove(connPath) }()

	logger.Info("kernel listening",
		zap.String("connection_file", connPath),
		zap.Int("shell_port", info.ShellPort),
		zap.Int("iopub_port", info.IOPubPort))

	if cfg.Kernel.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/events", rt.SSE)
		mux.Handle("/admin/", rt.Admin)
		httpSrv := &http.Server{Addr: cfg.Kernel.HTTPAddr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("http admin/sse server stopped", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			_ = httpSrv.Close()
		}()
		logger.Info("http admin/sse listening", zap.String("addr", cfg.Kernel.HTTPAddr))
	}

	err = rt.Server.Serve(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Info("kernel shut down")
		return nil
	}
	return err
}
