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

// Command llmspell-kernel is a standalone kernel launcher: one flat
// binary, no subcommand tree, for the common case of "start a kernel
// right here, right now" (container entrypoints, process supervisors,
// quick local testing) where cmd/llmspell's broader CLI surface would
// be unnecessary ceremony.
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
	"github.com/llmspell/llmspell/internal/version"
)

var (
	ip             string
	httpAddr       string
	storageBackend string
	storageDSN     string
	connectionFile string
	logLevel       string
	logDevelopment bool
)

var rootCmd = &cobra.Command{
	Use:   "llmspell-kernel",
	Short: "Start a single llmspell kernel and block until interrupted",
	Long: `llmspell-kernel starts one kernel process bound to --ip, opens the
storage backend named by --storage-backend/--storage-dsn, and writes its
connection descriptor to --connection-file. It has no subcommands: it boots,
serves, and exits on SIGINT/SIGTERM.`,
	Version: version.Get(),
	RunE:    runKernel,
}

func init() {
	rootCmd.Flags().StringVar(&ip, "ip", "127.0.0.1", "interface to bind the kernel's five channels to")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", "", "optional HTTP address serving the SSE iopub bridge (/events) and admin introspection (/admin/...)")
	rootCmd.Flags().StringVar(&storageBackend, "storage-backend", "memory", "storage backend: memory, sqlite, postgres, mysql")
	rootCmd.Flags().StringVar(&storageDSN, "storage-dsn", "", "storage backend DSN (ignored for memory)")
	rootCmd.Flags().StringVar(&connectionFile, "connection-file", "", "path to write the connection descriptor (default: $LLMSPELL_DATA_DIR/kernels/kernel-<pid>.json)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&logDevelopment, "log-development", false, "use zap's human-readable development encoder")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runKernel(cmd *cobra.Command, args []string) error {
	logger, err := applog.New(applog.Config{Level: logLevel, Development: logDevelopment})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: storageBackend, DSN: storageDSN},
		Kernel:  config.KernelConfig{IP: ip, HTTPAddr: httpAddr},
	}

	rt, err := kernelrt.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	connPath := connectionFile
	if connPath == "" {
		connPath = filepath.Join(config.SubDir("kernels"), fmt.Sprintf("kernel-%d.json", os.Getpid()))
	}
	if err := os.MkdirAll(filepath.Dir(connPath), 0o755); err != nil {
		return err
	}
	info := rt.Server.ConnectionInfo(ip, fmt.Sprintf("llmspell-kernel-%d", os.Getpid()))
	if err := kernel.SaveConnectionFile(connPath, info); err != nil {
		return err
	}
	defer func() { _ = os.Remove(connPath) }()

	logger.Info("kernel listening",
		zap.String("connection_file", connPath),
		zap.Int("shell_port", info.ShellPort),
		zap.Int("iopub_port", info.IOPubPort))

	if httpAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/events", rt.SSE)
		mux.Handle("/admin/", rt.Admin)
		httpSrv := &http.Server{Addr: httpAddr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("http admin/sse server stopped", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			_ = httpSrv.Close()
		}()
		logger.Info("http admin/sse listening", zap.String("addr", httpAddr))
	}

	err = rt.Server.Serve(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Info("kernel shut down")
		return nil
	}
	return err
}
