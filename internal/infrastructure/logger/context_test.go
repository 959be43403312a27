package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		log, _ := newObservedLogger()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("returns no-op logger when missing", func(t *testing.T) {
		log := FromContext(context.Background())
		require.NotNil(t, log)
		// No-op logger never panics on use
		log.Info("ignored")
	})
}

func TestContextEnrichment(t *testing.T) {
	t.Run("WithRequestID stores id and enriches logger", func(t *testing.T) {
		log, logs := newObservedLogger()
		ctx, enriched := WithRequestID(context.Background(), log, "req-123")

		assert.Equal(t, "req-123", GetRequestID(ctx))

		enriched.Info("test")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("WithTenantID stores id and enriches logger", func(t *testing.T) {
		log, logs := newObservedLogger()
		ctx, enriched := WithTenantID(context.Background(), log, "tenant-9")

		assert.Equal(t, "tenant-9", GetTenantID(ctx))

		enriched.Info("test")
		assert.Equal(t, "tenant-9", logs.All()[0].ContextMap()["tenant_id"])
	})

	t.Run("getters return empty string when unset", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("injects context identifiers into entries", func(t *testing.T) {
		log, logs := newObservedLogger()
		ctx := WithContext(context.Background(), log)
		ctx = context.WithValue(ctx, RequestIDKey, "req-7")
		ctx = context.WithValue(ctx, TenantIDKey, "tenant-1")
		ctx = context.WithValue(ctx, UserIDKey, "user-2")

		L(ctx).Info("enquiry created", zap.String("enquiry_number", "0042"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "enquiry created", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
		assert.Equal(t, "tenant-1", fields["tenant_id"])
		assert.Equal(t, "user-2", fields["user_id"])
		assert.Equal(t, "0042", fields["enquiry_number"])
	})

	t.Run("WithLogger uses provided logger", func(t *testing.T) {
		log, logs := newObservedLogger()

		WithLogger(context.Background(), log).Warn("balance cache stale")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("With adds persistent fields", func(t *testing.T) {
		log, logs := newObservedLogger()
		ctx := WithContext(context.Background(), log)

		cl := L(ctx).With(zap.String("component", "billing"))
		cl.Info("first")
		cl.Info("second")

		require.Equal(t, 2, logs.Len())
		for _, entry := range logs.All() {
			assert.Equal(t, "billing", entry.ContextMap()["component"])
		}
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		assert.NotPanics(t, func() {
			cl.Error("dropped")
		})
	})
}
