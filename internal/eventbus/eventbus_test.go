package eventbus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspell/llmspell/internal/eventbus"
)

func TestSubscribeMatchesGlob(t *testing.T) {
	bus := eventbus.New(4, nil)
	defer bus.Close()

	sub := bus.Subscribe("session.*.created")
	defer sub.Unsubscribe()

	bus.Publish(eventbus.Event{Topic: "session.abc.created", Type: eventbus.Created, Payload: "abc"})
	bus.Publish(eventbus.Event{Topic: "session.abc.updated", Type: eventbus.Updated, Payload: "abc"})

	select {
	case ev := <-sub.C():
		assert.Equal(t, "session.abc.created", ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected a matching event")
	}

	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected second event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	bus := eventbus.New(1, nil)
	defer bus.Close()

	sub := bus.Subscribe("topic")
	defer sub.Unsubscribe()

	bus.Publish(eventbus.Event{Topic: "topic"})
	bus.Publish(eventbus.Event{Topic: "topic"})

	assert.Equal(t, int64(1), sub.Dropped())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := eventbus.New(4, nil)
	defer bus.Close()

	sub := bus.Subscribe("topic")
	sub.Unsubscribe()

	_, ok := <-sub.C()
	require.False(t, ok)
}
