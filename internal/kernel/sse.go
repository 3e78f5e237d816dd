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
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/llmspell/llmspell/internal/eventbus"
)

// iopubStream is the single SSE stream id every HTTP-side broadcast
// subscriber reads from; it carries the same "iopub.*" topic space
// the TCP iopub channel fans out, for clients that can hold an HTTP
// connection but not a raw socket (browser consoles, curl-based
// tooling).
const iopubStream = "iopub"

// SSEBridge republishes the eventbus's "iopub.*" topic space over
// Server-Sent Events, for clients that cannot hold a raw TCP
// connection to the kernel's iopub channel. It is an optional,
// additive surface: nothing in the five-channel wire protocol depends
// on it, and a kernel that never calls ServeHTTP never opens an HTTP
// listener.
type SSEBridge struct {
	srv    *sse.Server
	logger *zap.Logger
	done   chan struct{}
}

// NewSSEBridge subscribes to bus's "iopub.*" topics and republishes
// each event as an SSE message on the iopubStream. Call Close to stop
// forwarding and release the subscription.
func NewSSEBridge(bus *eventbus.Bus, logger *zap.Logger) *SSEBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := sse.New()
	srv.AutoReplay = false
	srv.CreateStream(iopubStream)

	b := &SSEBridge{srv: srv, logger: logger, done: make(chan struct{})}
	if bus != nil {
		sub := bus.Subscribe("iopub.*")
		go b.forward(sub, bus)
	}
	return b
}

func (b *SSEBridge) forward(sub *eventbus.Subscription, bus *eventbus.Bus) {
	defer sub.Unsubscribe()
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				b.logger.Warn("sse: failed to marshal event", zap.String("topic", ev.Topic), zap.Error(err))
				continue
			}
			b.srv.Publish(iopubStream, &sse.Event{Event: []byte(ev.Topic), Data: payload})
		case <-b.done:
			return
		}
	}
}

// ServeHTTP implements http.Handler, streaming every forwarded event
// to the connecting client as text/event-stream until the request
// context is cancelled. Callers mount this at a path of their
// choosing, e.g. http.Handle("/events", bridge).
func (b *SSEBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("stream", iopubStream)
	r.URL.RawQuery = q.Encode()
	b.srv.ServeHTTP(w, r)
}

// Close stops forwarding and releases the underlying SSE server.
func (b *SSEBridge) Close() {
	close(b.done)
	b.srv.Close()
}
