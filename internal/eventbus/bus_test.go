package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()
	b := New()

	ch, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Event{Type: EventJobStarted, Data: "daily-report"})

	select {
	case e := <-ch:
		assert.Equal(t, EventJobStarted, e.Type)
		assert.False(t, e.Time.IsZero(), "Publish should stamp Time")
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSlowSubscriberDrops(t *testing.T) {
	t.Parallel()
	b := New()

	ch, unsub := b.Subscribe(1)
	defer unsub()

	// Fill the buffer; further publishes must not block.
	b.Publish(Event{Type: EventJobFinished})
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Type: EventJobFinished})
		b.Publish(Event{Type: EventJobFinished})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	e := <-ch
	require.Equal(t, EventJobFinished, e.Type)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	unsub()
	unsub() // must not panic

	// Publishing after unsubscribe must not panic either.
	b.Publish(Event{Type: EventJobFailed})
}
