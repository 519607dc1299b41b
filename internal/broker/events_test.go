package broker

import (
	"context"
	"encoding/json"
	"testing"

	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	key   string
	event interface{}
}

type fakeWriter struct {
	events []recordedEvent
}

func (f *fakeWriter) PublishEvent(_ context.Context, key string, event interface{}) error {
	f.events = append(f.events, recordedEvent{key: key, event: event})
	return nil
}

func TestEventPublisherKeysByUser(t *testing.T) {
	w := &fakeWriter{}
	ep := NewEventPublisher(w)
	ctx := context.Background()

	require.NoError(t, ep.PublishOrderCreated(ctx, &models.OrderCreatedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:   "1",
		UserID:    "u1",
	}))
	require.NoError(t, ep.PublishCartCleared(ctx, &models.CartClearedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeCartCleared),
		UserID:    "u1",
	}))

	require.Len(t, w.events, 2)
	assert.Equal(t, "user-u1", w.events[0].key)
	assert.Equal(t, "user-u1", w.events[1].key)
}

func TestNewBaseEvent(t *testing.T) {
	a := NewBaseEvent(models.EventTypeCartCleared)
	b := NewBaseEvent(models.EventTypeCartCleared)

	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.Equal(t, models.EventTypeCartCleared, a.EventType)
	assert.False(t, a.Timestamp.IsZero())
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	eh := NewEventHandler()
	var created *models.OrderCreatedEvent
	var checkout *models.CheckoutCompletedEvent
	eh.OnOrderCreated(func(_ context.Context, e *models.OrderCreatedEvent) error {
		created = e
		return nil
	})
	eh.OnCheckoutCompleted(func(_ context.Context, e *models.CheckoutCompletedEvent) error {
		checkout = e
		return nil
	})
	ctx := context.Background()

	require.NoError(t, eh.HandleMessage(ctx, message(t, models.OrderCreatedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:   "42",
		UserID:    "u1",
		Total:     2500,
	})))
	require.NoError(t, eh.HandleMessage(ctx, message(t, models.CheckoutCompletedEvent{
		BaseEvent:   NewBaseEvent(models.EventTypeCheckoutCompleted),
		OrderID:     "42",
		UserID:      "u1",
		CartCleared: false,
		Warning:     "cart not cleared",
	})))

	require.NotNil(t, created)
	assert.Equal(t, "42", created.OrderID)
	assert.Equal(t, int64(2500), created.Total)
	require.NotNil(t, checkout)
	assert.False(t, checkout.CartCleared)
	assert.Equal(t, "cart not cleared", checkout.Warning)
}

func TestHandleMessageIgnoresUnregisteredAndUnknown(t *testing.T) {
	eh := NewEventHandler()
	ctx := context.Background()

	assert.NoError(t, eh.HandleMessage(ctx, message(t, models.CartClearedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeCartCleared),
		UserID:    "u1",
	})))
	assert.NoError(t, eh.HandleMessage(ctx, message(t, models.BaseEvent{EventType: "SOMETHING_ELSE"})))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()
	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("{")})
	assert.Error(t, err)
}
