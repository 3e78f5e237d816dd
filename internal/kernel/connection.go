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
package kernel

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// generateKey returns a random 32-byte hex-encoded HMAC signing key.
func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(errs.Internal, err, "generate hmac key")
	}
	return hex.EncodeToString(buf), nil
}

// SaveConnectionFile writes info as indented JSON to path, the
// descriptor a client reads to discover and authenticate to this
// kernel instance. The write is atomic (temp file then rename) so a
// client polling for the file never observes a partially written
// descriptor before the kernel's sockets are up.
func SaveConnectionFile(path string, info types.ConnectionInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode connection file")
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return errs.Wrap(errs.Internal, err, "write connection file temp %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errs.Wrap(errs.Internal, err, "rename connection file %s", path)
	}
	return nil
}

// LoadConnectionFile reads a connection descriptor previously written
// by SaveConnectionFile.
func LoadConnectionFile(path string) (types.ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ConnectionInfo{}, errs.Wrap(errs.Internal, err, "read connection file %s", path)
	}
	var info types.ConnectionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return types.ConnectionInfo{}, errs.Wrap(errs.Validation, err, "decode connection file %s", path)
	}
	return info, nil
}
