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
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/eventbus"
	"github.com/llmspell/llmspell/internal/kernel"
)

func TestSSEBridgeForwardsIOPubEvents(t *testing.T) {
	bus := eventbus.New(16, nil)
	bridge := kernel.NewSSEBridge(bus, nil)
	defer bridge.Close()

	srv := httptest.NewServer(bridge)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The SSE client's stream registration and our publish race: there is no
	// signal for "this HTTP client is now attached to the stream", so rather
	// than sleep once and hope, republish on a short tick until the reader
	// observes it or the deadline expires.
	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- line
		}
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-ticker.C:
			bus.Publish(eventbus.Event{Topic: "iopub.status", Type: eventbus.Updated, Payload: "busy"})
		case line, ok := <-lines:
			if !ok {
				t.Fatal("sse stream closed before observing the published event")
			}
			if strings.Contains(line, "iopub.status") {
				return
			}
		case <-deadline:
			t.Fatal("never observed the published event over SSE")
		}
	}
}
