package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "stockroom"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("procurement"))
	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled(), "span profiles need a live tracer provider")
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "stockroom"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("procurement"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestInstruments(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	meter := provider.Meter("test")

	counter, err := telemetry.NewCounter(meter, "orders.created", "Orders created", "{order}")
	require.NoError(t, err)
	floatCounter, err := telemetry.NewFloatCounter(meter, "units.received", "Units received", "{unit}")
	require.NoError(t, err)
	histogram, err := telemetry.NewHistogram(meter, "request.duration", "Request duration", "s", []float64{0.1, 1})
	require.NoError(t, err)

	status := attribute.String("status", "approved")
	counter.Inc(ctx, status)
	counter.Inc(ctx, status)
	floatCounter.Add(ctx, 2.5)
	histogram.Record(ctx, 0.5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := make(map[string]metricdata.Aggregation)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = m.Data
	}

	sum, ok := found["orders.created"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	units, ok := found["units.received"].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.InDelta(t, 2.5, units.DataPoints[0].Value, 0.0001)

	hist, ok := found["request.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
