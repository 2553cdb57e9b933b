package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
)

func TestLoggerSubscriberHandlesPayloadShapes(t *testing.T) {
	subscriber := NewLoggerSubscriber(arbor.NewLogger())
	ctx := context.Background()

	err := subscriber(ctx, interfaces.Event{
		Type: interfaces.EventJobCompleted,
		Payload: map[string]interface{}{
			"job_id": "job_123",
			"linter": "eslint",
			"status": "completed",
		},
	})
	assert.NoError(t, err)

	// Payload-free events log without structured fields
	err = subscriber(ctx, interfaces.Event{Type: interfaces.EventJobTimeout, Payload: nil})
	assert.NoError(t, err)
}

func TestSubscribeLoggerToAllEvents(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := NewService(logger)
	defer eventService.Close()

	require.NoError(t, SubscribeLoggerToAllEvents(eventService, logger))

	ctx := context.Background()
	for _, eventType := range []interfaces.EventType{
		interfaces.EventJobCompleted,
		interfaces.EventJobFailed,
		interfaces.EventJobCancelled,
		interfaces.EventJobTimeout,
	} {
		err := eventService.PublishSync(ctx, interfaces.Event{
			Type:    eventType,
			Payload: map[string]interface{}{"job_id": "job_1"},
		})
		assert.NoError(t, err, string(eventType))
	}
}

func TestLoggerSubscriberDoesNotInterfere(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := NewService(logger)
	defer eventService.Close()

	require.NoError(t, SubscribeLoggerToAllEvents(eventService, logger))

	callCount := 0
	err := eventService.Subscribe(interfaces.EventJobCompleted, func(ctx context.Context, event interfaces.Event) error {
		callCount++
		return nil
	})
	require.NoError(t, err)

	err = eventService.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventJobCompleted,
		Payload: map[string]interface{}{"job_id": "job_1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
}
