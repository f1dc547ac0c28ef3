package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestProcurementMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := telemetry.NewProcurementMetrics(provider.Meter("procurement-test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordOrderCreated(ctx, tenantID)
	m.RecordTransition(ctx, tenantID, "PurchaseOrderSubmitted", "draft", "pending")
	m.RecordTransition(ctx, tenantID, "PurchaseOrderApproved", "pending", "approved")
	m.RecordReceived(ctx, tenantID, 2.5)
	m.RecordReceived(ctx, tenantID, 1.5)

	data := collect(t, reader)

	created, ok := data["procurement.orders_created"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(1), created.DataPoints[0].Value)

	transitions, ok := data["procurement.transitions"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, transitions.DataPoints, 2)

	received, ok := data["procurement.received_quantity"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, received.DataPoints, 1)
	assert.InDelta(t, 4.0, received.DataPoints[0].Value, 0.0001)
}

func TestNewProcurementMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewProcurementMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}
