package events

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)

	var got []string
	bus.Subscribe(KindSyncCompleted, func(Event) { got = append(got, "first") })
	bus.Subscribe(KindSyncCompleted, func(Event) { got = append(got, "second") })
	bus.Subscribe(KindConnectionChange, func(Event) { got = append(got, "other kind") })

	bus.Publish(Event{Kind: KindSyncCompleted, Processed: 2})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestBus_PublishFillsTimestamp(t *testing.T) {
	bus := NewBus(nil)

	var at time.Time
	bus.Subscribe(KindConnectionChange, func(e Event) { at = e.At })
	bus.Publish(Event{Kind: KindConnectionChange, Online: true})

	assert.False(t, at.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var calls atomic.Int32
	unsub := bus.Subscribe(KindConnectionChange, func(Event) { calls.Add(1) })
	require.Equal(t, 1, bus.Subscribers(KindConnectionChange))

	bus.Publish(Event{Kind: KindConnectionChange})
	unsub()
	unsub()
	bus.Publish(Event{Kind: KindConnectionChange})

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, bus.Subscribers(KindConnectionChange))
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)

	var reached bool
	bus.Subscribe(KindSyncCompleted, func(Event) { panic("boom") })
	bus.Subscribe(KindSyncCompleted, func(Event) { reached = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: KindSyncCompleted}) })
	assert.True(t, reached)
}

func TestBus_NilHandlerIgnored(t *testing.T) {
	bus := NewBus(nil)
	unsub := bus.Subscribe(KindSyncCompleted, nil)
	assert.NotPanics(t, unsub)
	assert.Equal(t, 0, bus.Subscribers(KindSyncCompleted))
}

func TestBus_ConcurrentSubscribePublish(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(KindConnectionChange, func(Event) {})
			unsub()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(Event{Kind: KindConnectionChange})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.Subscribers(KindConnectionChange))
}

func TestEvent_Status(t *testing.T) {
	assert.Equal(t, "online", Event{Online: true}.Status())
	assert.Equal(t, "offline", Event{}.Status())
}
