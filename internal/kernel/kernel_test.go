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
package kernel_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/types"
)

func TestWireProtocolRoundTrip(t *testing.T) {
	w := kernel.NewWireProtocol("shared-secret")
	msg := &types.Message{
		Header:  types.MessageHeader{ID: "1", Type: "execute_request", Version: "1.0"},
		Content: map[string]any{"code": "print(1)"},
	}

	raw, err := w.Encode(msg)
	require.NoError(t, err)

	decoded, err := w.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, msg.Header.ID, decoded.Header.ID)
	assert.Equal(t, "print(1)", decoded.Content["code"])
}

func TestWireProtocolRejectsTamperedFrame(t *testing.T) {
	sender := kernel.NewWireProtocol("shared-secret")
	attacker := kernel.NewWireProtocol("wrong-secret")

	msg := &types.Message{Header: types.MessageHeader{ID: "1", Type: "execute_request"}}
	raw, err := sender.Encode(msg)
	require.NoError(t, err)

	_, err = attacker.Decode(raw)
	assert.Error(t, err)
}

func TestConnectionFileRoundTrip(t *testing.T) {
	info := types.ConnectionInfo{
		Transport: "tcp", IP: "127.0.0.1", ShellPort: 1, IOPubPort: 2,
		StdinPort: 3, ControlPort: 4, HeartbeatPort: 5,
		Key: "abc", SignatureScheme: "hmac-sha256", KernelName: "llmspell",
	}
	path := filepath.Join(t.TempDir(), "kernel-test.json")

	require.NoError(t, kernel.SaveConnectionFile(path, info))
	got, err := kernel.LoadConnectionFile(path)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
