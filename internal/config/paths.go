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

// Package config resolves llmspell's data directory and loads its
// configuration via viper, layering environment variables, an
// optional config file, and built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDir returns the llmspell data directory.
//
// Priority:
//  1. LLMSPELL_DATA_DIR environment variable, if set
//  2. ~/.llmspell
//
// This is read directly from the environment rather than viper so it
// can locate the config file itself before viper is initialized.
func DataDir() string {
	if dir := os.Getenv("LLMSPELL_DATA_DIR"); dir != "" {
		return expandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".llmspell"
	}
	return filepath.Join(home, ".llmspell")
}

// SubDir returns a subdirectory of DataDir, e.g. SubDir("sessions").
func SubDir(name string) string {
	return filepath.Join(DataDir(), name)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
