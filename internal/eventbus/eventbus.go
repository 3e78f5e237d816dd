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

// Package eventbus is an in-process, glob-pattern publish/subscribe
// bus. Components announce state changes (agent registered, workflow
// step finished, session archived) as typed Events on a topic string;
// subscribers register a glob pattern and receive every event whose
// topic matches it through a bounded channel. Delivery is
// fire-and-forget: a slow subscriber drops events rather than
// blocking the publisher.
package eventbus

import (
	"path"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventType classifies the nature of a published event.
type EventType int

const (
	Created EventType = iota
	Updated
	Deleted
)

func (t EventType) String() string {
	switch t {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one published message: a topic, a type, and an arbitrary
// payload.
type Event struct {
	Topic   string
	Type    EventType
	Payload any
}

// Subscription is a live glob-pattern subscription. Callers range over
// C until Unsubscribe is called or the bus is closed.
type Subscription struct {
	pattern   string
	c         chan Event
	dropped   atomic.Int64
	bus       *Bus
	closeOnce sync.Once
}

// C returns the channel events matching this subscription's pattern
// are delivered on.
func (s *Subscription) C() <-chan Event { return s.c }

// Dropped returns the number of events dropped because the
// subscriber's queue was full — the rate-limit violation counter
// callers should surface as a metric.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Unsubscribe stops delivery and releases the subscription's queue.
func (s *Subscription) Unsubscribe() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.c)
	})
}

// Bus is a glob-pattern pub/sub bus with bounded per-subscription
// queues.
type Bus struct {
	logger      *zap.Logger
	queueDepth  int
	mu          sync.RWMutex
	subscribers []*Subscription
	closed      bool
}

// New returns a Bus whose subscriber queues hold queueDepth events
// before new events are dropped. A non-positive queueDepth defaults to 64.
func New(queueDepth int, logger *zap.Logger) *Bus {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger, queueDepth: queueDepth}
}

// Subscribe registers a glob pattern (as understood by path.Match,
// e.g. "session.*.artifact.created") and returns a Subscription that
// receives every future event whose topic matches.
func (b *Bus) Subscribe(pattern string) *Subscription {
	sub := &Subscription{
		pattern: pattern,
		c:       make(chan Event, b.queueDepth),
		bus:     b,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, sub)
	return sub
}

// Publish delivers ev to every subscription whose pattern matches
// ev.Topic. Delivery never blocks: a subscriber with a full queue has
// the event dropped and its Dropped counter incremented.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subscribers {
		matched, err := path.Match(sub.pattern, ev.Topic)
		if err != nil || !matched {
			continue
		}
		select {
		case sub.c <- ev:
		default:
			sub.dropped.Add(1)
			b.logger.Warn("eventbus: dropped event, subscriber queue full",
				zap.String("topic", ev.Topic), zap.String("pattern", sub.pattern))
		}
	}
}

// Close unsubscribes and closes the channel of every live subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.c)
	}
	b.subscribers = nil
}

func (b *Bus) remove(target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == target {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}
