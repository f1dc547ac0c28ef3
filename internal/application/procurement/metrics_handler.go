package procurement

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MetricsRecorder receives purchase order counters
type MetricsRecorder interface {
	RecordOrderCreated(ctx context.Context, tenantID uuid.UUID)
	RecordTransition(ctx context.Context, tenantID uuid.UUID, eventType, from, to string)
	RecordReceived(ctx context.Context, tenantID uuid.UUID, quantity float64)
}

// MetricsHandler turns purchase order events into counters
type MetricsHandler struct {
	recorder MetricsRecorder
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(recorder MetricsRecorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		procurement.EventTypePurchaseOrderCreated,
		procurement.EventTypePurchaseOrderSubmitted,
		procurement.EventTypePurchaseOrderApproved,
		procurement.EventTypePurchaseOrderRejected,
		procurement.EventTypePurchaseOrderCancelled,
		procurement.EventTypePurchaseOrderClosed,
		procurement.EventTypePurchaseOrderGoodsReceived,
	}
}

// Handle records the event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *procurement.PurchaseOrderCreatedEvent:
		h.recorder.RecordOrderCreated(ctx, e.TenantID())
	case *procurement.PurchaseOrderStatusChangedEvent:
		h.recorder.RecordTransition(ctx, e.TenantID(), e.EventType(), string(e.FromStatus), string(e.ToStatus))
	case *procurement.PurchaseOrderGoodsReceivedEvent:
		for _, line := range e.Lines {
			h.recorder.RecordReceived(ctx, e.TenantID(), line.Quantity.InexactFloat64())
		}
		if e.FromStatus != e.ToStatus {
			h.recorder.RecordTransition(ctx, e.TenantID(), e.EventType(), string(e.FromStatus), string(e.ToStatus))
		}
	}
	return nil
}
