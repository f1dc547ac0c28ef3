package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type exportedRecord struct {
	body     string
	severity otellog.Severity
}

type memoryLogExporter struct {
	mu      sync.Mutex
	records []exportedRecord
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range records {
		e.records = append(e.records, exportedRecord{
			body:     records[i].Body().AsString(),
			severity: records[i].Severity(),
		})
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) exported() []exportedRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exportedRecord(nil), e.records...)
}

func recordingLoggerProvider(t *testing.T) (*LoggerProvider, *memoryLogExporter) {
	t.Helper()
	exporter := &memoryLogExporter{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		logger:   zap.NewNop(),
		config:   LogsConfig{Enabled: true, ServiceName: "stockroom"},
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "stockroom",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapCore(t *testing.T) {
	t.Run("nil provider is a no-op", func(t *testing.T) {
		core := NewZapCore(nil, "stockroom", zapcore.InfoLevel)
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("disabled provider is a no-op", func(t *testing.T) {
		lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
		require.NoError(t, err)
		core := NewZapCore(lp, "stockroom", zapcore.InfoLevel)
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("level filter applies above debug", func(t *testing.T) {
		lp, _ := recordingLoggerProvider(t)

		core := NewZapCore(lp, "stockroom", zapcore.WarnLevel)
		_, filtered := core.(*levelFilterCore)
		assert.True(t, filtered)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))

		assert.True(t, NewZapCore(lp, "stockroom", zapcore.DebugLevel).Enabled(zapcore.DebugLevel))
	})
}

func TestBridge(t *testing.T) {
	t.Run("disabled provider returns the logger unchanged", func(t *testing.T) {
		base := zap.NewNop()
		lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, base)
		require.NoError(t, err)
		assert.Same(t, base, Bridge(base, lp, "stockroom", zapcore.InfoLevel))
	})

	t.Run("entries reach both outputs", func(t *testing.T) {
		lp, exporter := recordingLoggerProvider(t)
		observed, logs := observer.New(zapcore.DebugLevel)

		log := Bridge(zap.New(observed), lp, "stockroom", zapcore.InfoLevel)
		log.Debug("loading order")
		log.Info("order approved", zap.String("order_number", "PO-000001"))
		log.With(zap.String("tenant_id", "t-1")).Warn("receipt rejected")

		assert.Equal(t, 3, logs.Len(), "local output keeps debug entries")

		records := exporter.exported()
		require.Len(t, records, 2)
		assert.Equal(t, "order approved", records[0].body)
		assert.Equal(t, otellog.SeverityInfo, records[0].severity)
		assert.Equal(t, "receipt rejected", records[1].body)
		assert.Equal(t, otellog.SeverityWarn, records[1].severity)
	})
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}

	log := zap.New(core).With(zap.String("component", "receiving"))
	log.Info("dropped")
	log.Error("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "receiving", entry.ContextMap()["component"])
}
