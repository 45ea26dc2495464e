package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sumInt64(t *testing.T, rm metricdata.ResourceMetrics, name string) (int64, bool) {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok, name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func TestMetrics_RecordInvocation(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := newMetrics(mp.Meter(instrumentationName), nil)

	ctx := context.Background()
	m.RecordInvocation(ctx, ToolAnalyzePatterns, 100*time.Millisecond, nil)
	m.RecordInvocation(ctx, ToolAnalyzePatterns, 50*time.Millisecond, errors.New("invalid document"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	invocations, ok := sumInt64(t, rm, "habitlens.mcp.tool.invocations_total")
	require.True(t, ok, "invocations counter")
	assert.Equal(t, int64(2), invocations)

	errs, ok := sumInt64(t, rm, "habitlens.mcp.tool.errors_total")
	require.True(t, ok, "errors counter")
	assert.Equal(t, int64(1), errs)

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name == "habitlens.mcp.tool.duration_seconds" {
				found = true
			}
		}
	}
	assert.True(t, found, "duration histogram")
}

func TestMetrics_ActiveRequests(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := newMetrics(mp.Meter(instrumentationName), nil)

	ctx := context.Background()
	m.IncrementActive(ctx, ToolContextualPrompts)
	m.IncrementActive(ctx, ToolContextualPrompts)
	m.DecrementActive(ctx, ToolContextualPrompts)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	active, ok := sumInt64(t, rm, "habitlens.mcp.tool.active_requests")
	require.True(t, ok, "active_requests metric")
	assert.Equal(t, int64(1), active)
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"cancelled", fmt.Errorf("analysis failed: %w", context.Canceled), "cancelled"},
		{"deadline", context.DeadlineExceeded, "cancelled"},
		{"validation error", errors.New("validation failed"), "validation_error"},
		{"invalid input", errors.New("invalid document"), "validation_error"},
		{"encoding", errors.New("encoding output: bad value"), "encoding_error"},
		{"generic error", errors.New("something went wrong"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, categorizeError(tt.err))
		})
	}
}
