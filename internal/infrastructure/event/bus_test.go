package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "PurchaseOrder", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []string
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event.EventType())
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	approved := newTestHandler("PurchaseOrderApproved")
	all := newTestHandler()
	bus.Subscribe(approved)
	bus.Subscribe(all)

	err := bus.Publish(ctx,
		newTestEvent("PurchaseOrderSubmitted"),
		newTestEvent("PurchaseOrderApproved"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"PurchaseOrderApproved"}, approved.received())
	assert.Equal(t, []string{"PurchaseOrderSubmitted", "PurchaseOrderApproved"}, all.received())
}

func TestInMemoryEventBus_SubscribeOverridesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("PurchaseOrderApproved")
	bus.Subscribe(h, "PurchaseOrderCancelled")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("PurchaseOrderApproved"),
		newTestEvent("PurchaseOrderCancelled"),
	))
	assert.Equal(t, []string{"PurchaseOrderCancelled"}, h.received())
}

func TestInMemoryEventBus_HandlerFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler()
		failing.err = errors.New("sink unavailable")
		healthy := newTestHandler()
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newTestEvent("PurchaseOrderClosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sink unavailable")
		assert.Equal(t, []string{"PurchaseOrderClosed"}, healthy.received())
	})

	t.Run("panic is recovered and reported", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := newTestHandler()
		panicking.panicWith = "boom"
		healthy := newTestHandler()
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, newTestEvent("PurchaseOrderClosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Len(t, healthy.received(), 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("PurchaseOrderApproved")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PurchaseOrderApproved")))
	assert.Empty(t, h.received())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler()
	bus.Subscribe(h)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("PurchaseOrderCreated")))

	require.NoError(t, bus.Stop(ctx))
	err := bus.Publish(ctx, newTestEvent("PurchaseOrderApproved"))
	assert.ErrorIs(t, err, ErrBusStopped)
	assert.Equal(t, []string{"PurchaseOrderCreated"}, h.received())
}
