package procurement

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/procurement"
	"github.com/stockroom/backend/internal/domain/shared"
)

// AuditHandler writes one structured audit line per purchase order event
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return append([]string{procurement.EventTypePurchaseOrderCreated}, procurement.TransitionEventTypes...)
}

// Handle logs the event
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("order_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *procurement.PurchaseOrderCreatedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("supplier", e.SupplierName),
			zap.Int("line_count", e.LineCount),
			zap.Stringp("actor_id", uuidString(e.CreatedBy)),
		)
	case *procurement.PurchaseOrderStatusChangedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("from_status", string(e.FromStatus)),
			zap.String("to_status", string(e.ToStatus)),
			zap.Stringp("actor_id", uuidString(e.ActorID)),
		)
		if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
	case *procurement.PurchaseOrderGoodsReceivedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("from_status", string(e.FromStatus)),
			zap.String("to_status", string(e.ToStatus)),
			zap.Int("line_count", len(e.Lines)),
			zap.Stringp("actor_id", uuidString(e.ActorID)),
		)
	case *procurement.PurchaseOrderFullyReceivedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("from_status", string(e.FromStatus)),
			zap.Stringp("actor_id", uuidString(e.ActorID)),
		)
	}

	h.logger.Info("purchase order event", fields...)
	return nil
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
