package procurement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockroom/backend/internal/domain/procurement"
)

type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID) {
	m.Called(ctx, tenantID)
}

func (m *MockMetricsRecorder) RecordTransition(ctx context.Context, tenantID uuid.UUID, eventType, from, to string) {
	m.Called(ctx, tenantID, eventType, from, to)
}

func (m *MockMetricsRecorder) RecordReceived(ctx context.Context, tenantID uuid.UUID, quantity float64) {
	m.Called(ctx, tenantID, quantity)
}

func TestAuditHandler_LogsTransition(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditHandler(zap.New(core))

	f := newServiceFixture()
	order := f.newOrder(t, 1)
	require.NoError(t, order.Submit(f.actorID))
	require.NoError(t, order.Reject(f.actorID, "price too high"))

	for _, event := range order.GetDomainEvents() {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	entries := logs.FilterMessage("purchase order event").All()
	require.Len(t, entries, 2)

	rejected := entries[1].ContextMap()
	assert.Equal(t, procurement.EventTypePurchaseOrderRejected, rejected["event_type"])
	assert.Equal(t, "pending", rejected["from_status"])
	assert.Equal(t, "draft", rejected["to_status"])
	assert.Equal(t, "price too high", rejected["reason"])
	assert.Equal(t, f.actorID.String(), rejected["actor_id"])
}

func TestAuditHandler_EventTypes(t *testing.T) {
	handler := NewAuditHandler(zap.NewNop())
	assert.Contains(t, handler.EventTypes(), procurement.EventTypePurchaseOrderCreated)
	assert.Contains(t, handler.EventTypes(), procurement.EventTypePurchaseOrderFullyReceived)
}

func TestMetricsHandler(t *testing.T) {
	recorder := new(MockMetricsRecorder)
	handler := NewMetricsHandler(recorder)
	ctx := context.Background()

	f := newServiceFixture()
	order := f.approvedOrder(t, 10)
	_, err := order.Receive(f.actorID, []procurement.ReceiptLine{{LineID: order.Items[0].ID, Quantity: decimal.NewFromInt(3)}})
	require.NoError(t, err)
	_, err = order.Receive(f.actorID, []procurement.ReceiptLine{{LineID: order.Items[0].ID, Quantity: decimal.NewFromInt(2)}})
	require.NoError(t, err)

	recorder.On("RecordReceived", ctx, f.tenantID, 3.0).Once()
	recorder.On("RecordReceived", ctx, f.tenantID, 2.0).Once()
	recorder.On("RecordTransition", ctx, f.tenantID, procurement.EventTypePurchaseOrderGoodsReceived, "approved", "partially_received").Once()

	for _, event := range order.GetDomainEvents() {
		require.NoError(t, handler.Handle(ctx, event))
	}

	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "RecordTransition", 1)
}
