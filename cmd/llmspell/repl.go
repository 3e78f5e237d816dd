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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/types"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Connect to a running kernel and send it requests interactively",
	Long: `repl dials the shell channel of a kernel named by --connect (or --kernel,
as a connection-file path) and reads lines from stdin, sending each as the
content of a kernel_info_request or execute_request depending on its prefix:

  :info             send a kernel_info_request
  <anything else>   send an execute_request with {"code": "<anything else>"}

This is a thin wire-protocol client, not a scripting console: there is no
script engine bound to the kernel side, so execute_request replies report
that plainly rather than evaluating anything.`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	connPath := connectTo
	if connPath == "" {
		connPath = kernelFlag
	}
	if connPath == "" {
		return errs.New(errs.Validation, "repl requires --connect (or --kernel) pointing at a connection file")
	}

	info, err := kernel.LoadConnectionFile(connPath)
	if err != nil {
		return err
	}
	client, err := kernel.Dial(info)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	fmt.Fprintf(cmd.OutOrStdout(), "connected to %s:%d (%s)\n", info.IP, info.ShellPort, info.KernelName)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), "llmspell> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		reply, err := sendREPLLine(ctx, client, line)
		cancel()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", reply.Content)
	}
}

func sendREPLLine(ctx context.Context, client *kernel.Client, line string) (*types.Message, error) {
	if line == ":info" {
		return client.Send(ctx, "kernel_info_request", nil)
	}
	return client.Send(ctx, "execute_request", map[string]any{"code": line})
}
