package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// ProcurementMetrics counts purchase order activity.
type ProcurementMetrics struct {
	ordersCreated    *Counter
	transitions      *Counter
	receivedQuantity *FloatCounter
}

// NewProcurementMetrics registers the procurement instruments on meter.
func NewProcurementMetrics(meter metric.Meter) (*ProcurementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	created, err := NewCounter(meter,
		"procurement.orders_created",
		"Number of purchase orders created",
		"{orders}")
	if err != nil {
		return nil, err
	}

	transitions, err := NewCounter(meter,
		"procurement.transitions",
		"Number of purchase order status transitions",
		"{transitions}")
	if err != nil {
		return nil, err
	}

	received, err := NewFloatCounter(meter,
		"procurement.received_quantity",
		"Quantity of goods received against purchase orders",
		"{units}")
	if err != nil {
		return nil, err
	}

	return &ProcurementMetrics{
		ordersCreated:    created,
		transitions:      transitions,
		receivedQuantity: received,
	}, nil
}

// RecordOrderCreated counts a new order.
func (m *ProcurementMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID) {
	m.ordersCreated.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordTransition counts one status change.
func (m *ProcurementMetrics) RecordTransition(ctx context.Context, tenantID uuid.UUID, eventType, from, to string) {
	m.transitions.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrEventType.String(eventType),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	)
}

// RecordReceived adds a received quantity.
func (m *ProcurementMetrics) RecordReceived(ctx context.Context, tenantID uuid.UUID, quantity float64) {
	m.receivedQuantity.Add(ctx, quantity, AttrTenantID.String(tenantID.String()))
}
