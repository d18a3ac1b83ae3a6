package messaging

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

func newTestBus(async bool) *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode: async,
		Logger:    logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError}),
	})
}

func TestPublish_TypedAndAllHandlers(t *testing.T) {
	bus := newTestBus(false)

	var typed, all int
	require.NoError(t, bus.Subscribe(shared.EventStudentRegistered, func(shared.Event) error {
		typed++
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		all++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewStudentRegisteredEvent("s-1", "Ana", "ana@example.com")))
	require.NoError(t, bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30)))

	assert.Equal(t, 1, typed, "typed handler sees only its event type")
	assert.Equal(t, 2, all, "catch-all handler sees everything")
	assert.Equal(t, int64(1), bus.PublishedCount(shared.EventStudentRegistered))
	assert.Equal(t, int64(1), bus.PublishedCount(shared.EventCourseCreated))
}

func TestPublish_SyncOrder(t *testing.T) {
	bus := newTestBus(false)

	var order []string
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		order = append(order, e.AggregateID())
		return nil
	}))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(shared.NewCourseCreatedEvent(id, "Go", 30)))
	}

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPublish_HandlerErrorDoesNotPropagate(t *testing.T) {
	bus := newTestBus(false)

	var after bool
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		after = true
		return nil
	}))

	err := bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30))
	assert.NoError(t, err)
	assert.True(t, after, "later handlers still run after a failure")
}

func TestPublish_Async(t *testing.T) {
	bus := newTestBus(true)

	var mu sync.Mutex
	seen := 0
	done := make(chan struct{})
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		mu.Lock()
		seen++
		if seen == 3 {
			close(done)
		}
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30)))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run")
	}
	require.NoError(t, bus.Close())
}

func TestClose(t *testing.T) {
	bus := newTestBus(false)
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventCourseCreated, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)

	// Closing twice is harmless.
	assert.NoError(t, bus.Close())
}

func TestPublish_NilArguments(t *testing.T) {
	bus := newTestBus(false)

	assert.Error(t, bus.Publish(nil))
	assert.Error(t, bus.Subscribe(shared.EventCourseCreated, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}
