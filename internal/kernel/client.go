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
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// Client is a minimal shell-channel client: it dials a running
// kernel's shell port, sends one signed request at a time, and waits
// for the matching signed reply. It does not subscribe to iopub; a
// REPL driving this client sees only request/reply traffic.
type Client struct {
	conn    net.Conn
	wire    *WireProtocol
	session string
	seq     atomic.Uint64
}

// Dial connects to info's shell channel and prepares to exchange
// signed frames using info's key and signature scheme.
func Dial(info types.ConnectionInfo) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", info.IP, info.ShellPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "dial shell channel %s", addr)
	}
	return &Client{
		conn:    conn,
		wire:    NewWireProtocol(info.Key),
		session: fmt.Sprintf("repl-%d", sessionCounter.Add(1)),
	}, nil
}

var sessionCounter atomic.Uint64

// Send encodes a request of the given message type and content, waits
// for its reply on the same connection, and returns it. Requests are
// serialized one at a time; Send is not safe to call concurrently.
func (c *Client) Send(ctx context.Context, msgType string, content map[string]any) (*types.Message, error) {
	req := &types.Message{
		Header: types.MessageHeader{
			ID:      fmt.Sprintf("%s-%d", c.session, c.seq.Add(1)),
			Session: c.session,
			Type:    msgType,
			Version: "1.0",
		},
		Content: content,
		Channel: types.ChannelShell,
	}

	raw, err := c.wire.Encode(req)
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(dl)
	}
	if err := writeFrame(c.conn, raw); err != nil {
		return nil, errs.Wrap(errs.Transport, err, "write request frame")
	}

	respRaw, err := readFrame(c.conn)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "read reply frame")
	}
	return c.wire.Decode(respRaw)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
