package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/exportquote/internal/observability"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should log event with sorted data fields and context ids", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		bus := observability.NewEventBus(zap.New(core))

		ctx := observability.WithRequestID(context.Background(), "req-1")
		ctx = observability.WithTenant(ctx, "acme")

		bus.Publish(ctx, "pricing.calculated", map[string]interface{}{
			"products": 2,
			"incoterm": "FOB",
		})

		entries := logs.All()
		require.Len(t, entries, 1)
		require.Equal(t, "pricing.calculated", entries[0].Message)

		fields := entries[0].ContextMap()
		require.Equal(t, "pricing.calculated", fields["event"])
		require.Equal(t, "FOB", fields["incoterm"])
		require.EqualValues(t, 2, fields["products"])
		require.Equal(t, "req-1", fields["request_id"])
		require.Equal(t, "acme", fields["tenant"])
	})

	t.Run("should be a no-op without logger", func(t *testing.T) {
		bus := observability.NewEventBus(nil)
		require.NotPanics(t, func() {
			bus.Publish(context.Background(), "noop", nil)
		})
	})
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	observability.SetLogger(zap.New(core))
	t.Cleanup(func() { observability.SetLogger(nil) })

	ctx := observability.WithTraceID(context.Background(), "trace-1")
	ctx = observability.WithIncoterm(ctx, "CIF")

	observability.FromContext(ctx).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "CIF", fields["incoterm"])
	require.NotContains(t, fields, "tenant")
}
