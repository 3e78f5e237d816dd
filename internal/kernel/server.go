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
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/types"
)

// Handler processes one decoded request message and returns the
// reply content to send back on the same channel.
type Handler func(ctx context.Context, req *types.Message) (*types.Message, error)

// Config groups a Server's bind address, session id, and kernel name.
// New takes only the bind address and generates the signing key itself.
type Config struct {
	IP         string
	SessionID  string
	KernelName string
}

// Server runs the kernel's five channels: shell and control accept
// HMAC-signed request/reply connections dispatched to registered
// Handlers, stdin accepts the same shape for input requests the
// script host issues back to a connected client, iopub fans out
// every eventbus publication on the "iopub.*" topic space to every
// connected subscriber, and heartbeat echoes whatever bytes a client
// sends, the cheapest possible liveness probe.
type Server struct {
	wire   *WireProtocol
	bus    *eventbus.Bus
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string]Handler

	// hmacFailures counts frames rejected for failing signature
	// verification (scenario S4), read via HMACFailures.
	hmacFailures int64

	shellLn     net.Listener
	controlLn   net.Listener
	stdinLn     net.Listener
	iopubLn     net.Listener
	heartbeatLn net.Listener

	wg sync.WaitGroup
}

// New constructs a Server bound to every interface 0.0.0.0 or ip binds
// to, each channel on an OS-assigned port. Call ConnectionInfo after
// New to learn the actual ports for a connection file.
func New(ip string, bus *eventbus.Bus, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	s := &Server{
		wire:     NewWireProtocol(key),
		bus:      bus,
		logger:   logger,
		handlers: make(map[string]Handler),
	}

	listeners := map[*net.Listener]string{
		&s.shellLn:     "shell",
		&s.controlLn:   "control",
		&s.stdinLn:     "stdin",
		&s.iopubLn:     "iopub",
		&s.heartbeatLn: "heartbeat",
	}
	for ref, name := range listeners {
		ln, err := net.Listen("tcp", ip+":0")
		if err != nil {
			s.closeListeners()
			return nil, errs.Wrap(errs.Transport, err, "bind %s channel", name)
		}
		*ref = ln
	}
	return s, nil
}

func (s *Server) closeListeners() {
	for _, ln := range []net.Listener{s.shellLn, s.controlLn, s.stdinLn, s.iopubLn, s.heartbeatLn} {
		if ln != nil {
			_ = ln.Close()
		}
	}
}

// ConnectionInfo builds the descriptor clients use to connect,
// including the HMAC key this server was constructed with.
func (s *Server) ConnectionInfo(ip, kernelName string) types.ConnectionInfo {
	return types.ConnectionInfo{
		Transport:       "tcp",
		IP:              ip,
		ShellPort:       s.shellLn.Addr().(*net.TCPAddr).Port,
		IOPubPort:       s.iopubLn.Addr().(*net.TCPAddr).Port,
		StdinPort:       s.stdinLn.Addr().(*net.TCPAddr).Port,
		ControlPort:     s.controlLn.Addr().(*net.TCPAddr).Port,
		HeartbeatPort:   s.heartbeatLn.Addr().(*net.TCPAddr).Port,
		Key:             string(s.wire.key),
		SignatureScheme: "hmac-sha256",
		KernelName:      kernelName,
	}
}

// Handle registers fn for messages whose header Type equals msgType,
// on shell, control, or stdin (the three request/reply channels).
func (s *Server) Handle(msgType string, fn Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[msgType] = fn
}

// HMACFailures returns the number of frames rejected so far for
// failing signature verification.
func (s *Server) HMACFailures() int64 {
	return atomic.LoadInt64(&s.hmacFailures)
}

// Serve starts accept loops on every channel and blocks until ctx is
// cancelled, then closes every listener.
func (s *Server) Serve(ctx context.Context) error {
	s.wg.Add(4)
	go s.serveRequestReply(ctx, s.shellLn, types.ChannelShell)
	go s.serveRequestReply(ctx, s.controlLn, types.ChannelControl)
	go s.serveRequestReply(ctx, s.stdinLn, types.ChannelStdin)
	go s.serveHeartbeat(ctx)
	s.wg.Add(1)
	go s.serveIOPub(ctx)

	<-ctx.Done()
	s.closeListeners()
	s.wg.Wait()
	return ctx.Err()
}

func (s *Server) serveRequestReply(ctx context.Context, ln net.Listener, channel types.ChannelKind) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("kernel: accept failed", zap.String("channel", string(channel)), zap.Error(err))
			return
		}
		s.wg.Add(1)
		go s.handleConn(ctx, conn, channel)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, channel types.ChannelKind) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		raw, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				s.logger.Debug("kernel: read frame failed", zap.String("channel", string(channel)), zap.Error(err))
			}
			return
		}

		req, err := s.wire.Decode(raw)
		if err != nil {
			if errs.KindOf(err) == errs.Unauthorized {
				s.rejectUnauthorized(conn, channel, raw)
				continue
			}
			s.logger.Warn("kernel: dropping unverifiable frame", zap.String("channel", string(channel)), zap.Error(err))
			continue
		}
		req.Channel = channel

		s.mu.RLock()
		handler, ok := s.handlers[req.Header.Type]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		reply, err := handler(ctx, req)
		if err != nil {
			s.logger.Error("kernel: handler failed",
				zap.String("channel", string(channel)), zap.String("msg_type", req.Header.Type), zap.Error(err))
			continue
		}
		if reply == nil {
			continue
		}
		reply.ParentHeader = req.Header
		out, err := s.wire.Encode(reply)
		if err != nil {
			s.logger.Error("kernel: encode reply failed", zap.Error(err))
			continue
		}
		if err := writeFrame(conn, out); err != nil {
			s.logger.Debug("kernel: write reply failed", zap.Error(err))
			return
		}
	}
}

// rejectUnauthorized handles a frame that failed HMAC verification
// (scenario S4): it counts the failure, broadcasts an error event on
// iopub, and writes back an Unauthorized reply on the same connection
// rather than silently dropping the frame.
func (s *Server) rejectUnauthorized(conn net.Conn, channel types.ChannelKind, raw []byte) {
	atomic.AddInt64(&s.hmacFailures, 1)
	s.logger.Warn("kernel: rejecting frame with invalid HMAC signature", zap.String("channel", string(channel)))

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Topic: "iopub.error",
			Type:  eventbus.Updated,
			Payload: map[string]any{
				"error":   "Unauthorized",
				"reason":  "hmac signature verification failed",
				"channel": string(channel),
			},
		})
	}

	reply := &types.Message{
		Header:       types.MessageHeader{Type: "error_reply"},
		ParentHeader: s.wire.decodeHeaderUnsafe(raw),
		Content: map[string]any{
			"status": "Unauthorized",
			"error":  "message signature verification failed",
		},
	}
	out, err := s.wire.Encode(reply)
	if err != nil {
		s.logger.Error("kernel: encode unauthorized reply failed", zap.Error(err))
		return
	}
	if err := writeFrame(conn, out); err != nil {
		s.logger.Debug("kernel: write unauthorized reply failed", zap.Error(err))
	}
}

func (s *Server) serveHeartbeat(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.heartbeatLn.Accept()
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			_, _ = io.Copy(conn, conn)
		}()
		if ctx.Err() != nil {
			return
		}
	}
}

// serveIOPub accepts client connections and streams every message
// published to the bus's "iopub.*" topics to each connected client,
// mirroring a Jupyter kernel's PUB-side fanout.
func (s *Server) serveIOPub(ctx context.Context) {
	defer s.wg.Done()
	if s.bus == nil {
		return
	}
	for {
		conn, err := s.iopubLn.Accept()
		if err != nil {
			return
		}
		go s.streamIOPub(ctx, conn)
	}
}

func (s *Server) streamIOPub(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	sub := s.bus.Subscribe("iopub.*")
	defer sub.Unsubscribe()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			msg := &types.Message{
				Header:  types.MessageHeader{Type: ev.Topic},
				Content: map[string]any{"payload": ev.Payload},
				Channel: types.ChannelIOPub,
			}
			out, err := s.wire.Encode(msg)
			if err != nil {
				continue
			}
			if err := writeFrame(conn, out); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
