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
package bindings

import "github.com/llmspell/llmspell/internal/eventbus"

// Event exposes the event bus as a script-facing global: scripts emit
// application events on a topic and subscribe to topic globs, without
// reaching into the bus's internal subscription bookkeeping.
type Event struct{ g *Globals }

// Event returns the script host's Event global.
func (g *Globals) Event() Event { return Event{g: g} }

// Emit publishes payload on topic as a Created event. Scripts have no
// use for the Updated/Deleted distinction the Go-side subsystems use
// internally, so every script-emitted event is Created.
func (e Event) Emit(topic string, payload map[string]any) {
	if e.g.Events == nil {
		return
	}
	e.g.Events.Publish(eventbus.Event{Topic: topic, Type: eventbus.Created, Payload: payload})
}

// Subscription is a script-facing handle over an eventbus.Subscription.
type Subscription struct{ sub *eventbus.Subscription }

// Subscribe registers pattern (an eventbus glob) and returns a handle
// scripts can poll for matching events.
func (e Event) Subscribe(pattern string) *Subscription {
	if e.g.Events == nil {
		return nil
	}
	return &Subscription{sub: e.g.Events.Subscribe(pattern)}
}

// Next blocks until an event arrives, or returns ok=false if the
// subscription was closed.
func (s *Subscription) Next() (eventbus.Event, bool) {
	ev, ok := <-s.sub.C()
	return ev, ok
}

// Close releases the subscription.
func (s *Subscription) Close() {
	s.sub.Unsubscribe()
}
