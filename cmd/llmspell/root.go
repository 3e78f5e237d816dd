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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/llmspell/llmspell/internal/applog"
	"github.com/llmspell/llmspell/internal/config"
	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/version"
)

var (
	cfgFile    string
	kernelFlag string
	connectTo  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "llmspell",
	Short:   "llmspell - a scripting runtime for orchestrating LLM-backed agents, tools, and workflows",
	Version: version.Get(),
	Long: `llmspell runs scripted agent/tool/workflow orchestrations against a kernel
that exposes a five-channel, HMAC-signed message protocol. Scripts talk to
the kernel's shell and iopub channels; this CLI starts a kernel, drives a
REPL against one, or manages its storage backend directly.`,
}

func init() {
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}

Support:
  GitHub: https://github.com/llmspell/llmspell/issues
  Documentation: https://github.com/llmspell/llmspell
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $LLMSPELL_DATA_DIR/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&kernelFlag, "kernel", "", "connection file of a kernel to start with (run) or connect to (repl)")
	rootCmd.PersistentFlags().StringVar(&connectTo, "connect", "", "connection file of an already-running kernel to connect to")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(storageCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(errs.Internal.ExitCode())
	}
}

func newLogger() *applog.Config {
	return &applog.Config{Level: cfg.Log.Level, Development: cfg.Log.Development}
}

// Execute runs the root command and exits the process with the exit
// code the failing command's error Kind maps to.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
