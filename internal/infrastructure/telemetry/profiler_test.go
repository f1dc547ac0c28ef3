package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{ServerAddress: "http://localhost:4040"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "stockroom"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "stockroom",
				ProfileTypes:    []string{"cpu", "heap"},
			},
			wantErr: `unknown profile type "heap"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveProfileTypes(t *testing.T) {
	types, err := resolveProfileTypes(nil)
	require.NoError(t, err)
	assert.Len(t, types, len(DefaultProfileTypes))
	assert.Contains(t, types, pyroscope.ProfileCPU)

	types, err = resolveProfileTypes([]string{"mutex_count", "block_duration"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileMutexCount, pyroscope.ProfileBlockDuration}, types)
}

func TestProfiler_StopConcurrent(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Stop())
		}()
	}
	wg.Wait()
}

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)

	pairs := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/purchase-orders/:id",
		"tenant-id":  "7f0c",
		"order_id":   "c8a1",
		"request_id": "req-1",
		"method":     "",
		"!!":         "dropped",
		"resource":   long,
	})

	// ordered by the caller's keys, "Route" sorts before lowercase
	assert.Equal(t, []string{
		"route", "/api/v1/purchase-orders/:id",
		"resource", long[:MaxLabelValueLength],
		"tenant_id", "7f0c",
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside fn", func(t *testing.T) {
		var route string
		WithProfilingLabels(context.Background(), HTTPRequestLabels("purchase-orders", "/api/v1/purchase-orders", "POST", ""), func(ctx context.Context) {
			route, _ = pprof.Label(ctx, ProfilingLabelRoute)
		})
		assert.Equal(t, "/api/v1/purchase-orders", route)
	})

	t.Run("empty labels still run fn", func(t *testing.T) {
		ctx := context.Background()
		called := false
		WithProfilingLabels(ctx, map[string]string{"user_id": "u-1"}, func(got context.Context) {
			called = true
			assert.Equal(t, ctx, got)
		})
		assert.True(t, called)
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	assert.Equal(t, map[string]string{
		ProfilingLabelResource: "purchase-orders",
		ProfilingLabelRoute:    "/api/v1/purchase-orders/:id",
		ProfilingLabelMethod:   "GET",
		ProfilingLabelTenantID: "t-1",
	}, HTTPRequestLabels("purchase-orders", "/api/v1/purchase-orders/:id", "GET", "t-1"))

	assert.Equal(t, map[string]string{ProfilingLabelMethod: "GET"}, HTTPRequestLabels("", "", "GET", ""))
}
