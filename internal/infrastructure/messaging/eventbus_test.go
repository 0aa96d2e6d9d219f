package messaging

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInMemoryEventBus(config)
}

func sessionEvent(eventType shared.EventType) shared.Event {
	return shared.NewSessionEvent(
		eventType,
		"33333333-3333-3333-3333-333333333333",
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
		"pending",
		shared.Actor{ID: "11111111-1111-1111-1111-111111111111", Role: shared.RoleStudent},
		"",
	)
}

func TestEventBus_DeliversByType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var received []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventSessionRequested, func(_ context.Context, event shared.Event) error {
		received = append(received, event.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), sessionEvent(shared.EventSessionRequested)))
	require.NoError(t, bus.Publish(context.Background(), sessionEvent(shared.EventSessionCancelled)))

	// Подписка по типу не видит чужие события.
	assert.Equal(t, []shared.EventType{shared.EventSessionRequested}, received)
}

func TestEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), sessionEvent(shared.EventSessionRequested)))
	require.NoError(t, bus.Publish(context.Background(), shared.NewAvailabilityUpdatedEvent("22222222-2222-2222-2222-222222222222")))

	assert.Equal(t, 2, count)
}

func TestEventBus_NilHandlerRejected(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventSessionRequested, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}

func TestEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), sessionEvent(shared.EventSessionRequested))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventSessionRequested, func(_ context.Context, _ shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Повторное закрытие безопасно.
	assert.NoError(t, bus.Close())
}

func TestEventBus_AsyncDeliveryCompletesOnClose(t *testing.T) {
	config := DefaultInMemoryEventBusConfig()
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := NewInMemoryEventBus(config)

	done := make(chan struct{}, 5)
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ shared.Event) error {
		done <- struct{}{}
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(context.Background(), sessionEvent(shared.EventSessionRequested)))
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("async handler was not invoked")
		}
	}

	require.NoError(t, bus.Close())
}

func TestEventBus_Metrics(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventSessionConfirmed, func(_ context.Context, _ shared.Event) error {
		return nil
	}))
	require.NoError(t, bus.Publish(context.Background(), sessionEvent(shared.EventSessionConfirmed)))

	metrics := bus.Metrics()
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalPublished)
	assert.Equal(t, int64(1), metrics.TotalHandled)
	assert.Zero(t, metrics.TotalFailures)
}
