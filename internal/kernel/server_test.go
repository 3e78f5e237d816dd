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
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/kernel"
	"github.com/llmspell/llmspell/internal/types"
)

func writeTestFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readTestFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	_, err := io.ReadFull(r, buf)
	return buf, err
}

func TestServerShellChannelRoundTrip(t *testing.T) {
	bus := eventbus.New(16, nil)
	srv, err := kernel.New("127.0.0.1", bus, nil)
	require.NoError(t, err)

	srv.Handle("execute_request", func(_ context.Context, req *types.Message) (*types.Message, error) {
		return &types.Message{
			Header:  types.MessageHeader{ID: "reply-1", Type: "execute_reply"},
			Content: map[string]any{"echo": req.Content["code"]},
		}, nil
	})

	info := srv.ConnectionInfo("127.0.0.1", "llmspell-test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	conn, err := net.DialTimeout("tcp", "127.0.0.1:"+itoa(info.ShellPort), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	w := kernel.NewWireProtocol(info.Key)
	req := &types.Message{
		Header:  types.MessageHeader{ID: "req-1", Type: "execute_request"},
		Content: map[string]any{"code": "1+1"},
	}
	raw, err := w.Encode(req)
	require.NoError(t, err)
	require.NoError(t, writeTestFrame(conn, raw))

	replyRaw, err := readTestFrame(conn)
	require.NoError(t, err)
	reply, err := w.Decode(replyRaw)
	require.NoError(t, err)
	require.Equal(t, "1+1", reply.Content["echo"])
}

func TestServerRejectsHMACUnauthorizedFrame(t *testing.T) {
	bus := eventbus.New(16, nil)
	srv, err := kernel.New("127.0.0.1", bus, nil)
	require.NoError(t, err)

	errSub := bus.Subscribe("iopub.error")
	defer errSub.Unsubscribe()

	info := srv.ConnectionInfo("127.0.0.1", "llmspell-test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	conn, err := net.DialTimeout("tcp", "127.0.0.1:"+itoa(info.ShellPort), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	wrongKeyWire := kernel.NewWireProtocol("not-the-real-key")
	req := &types.Message{
		Header:  types.MessageHeader{ID: "req-bad-sig", Type: "execute_request"},
		Content: map[string]any{"code": "1+1"},
	}
	raw, err := wrongKeyWire.Encode(req)
	require.NoError(t, err)
	require.NoError(t, writeTestFrame(conn, raw))

	replyRaw, err := readTestFrame(conn)
	require.NoError(t, err)
	serverKeyWire := kernel.NewWireProtocol(info.Key)
	reply, err := serverKeyWire.Decode(replyRaw)
	require.NoError(t, err)
	require.Equal(t, "Unauthorized", reply.Content["status"])

	select {
	case ev := <-errSub.C():
		require.Equal(t, "iopub.error", ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("no broadcast error event observed")
	}

	require.Equal(t, int64(1), srv.HMACFailures())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
