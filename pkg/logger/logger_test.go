package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "docserial/internal/core/context"
)

func TestFromContext_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithLogger(context.Background(), NewFromZap(zap.New(core)))
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{
		TraceID:   "t-1",
		RequestID: "r-1",
		Origin:    appctx.OriginCLI,
	})

	Warn(ctx, "fallback used", "type", "invoice")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "fallback used", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "cli", fields["origin"])
	assert.Equal(t, "invoice", fields["type"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestFromContext_UsesDefaultWithoutLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewFromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(Nop()) })

	Error(context.Background(), "rollback failed")
	SetDefault(nil)
	Info(context.Background(), "still routed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "rollback failed", logs.All()[0].Message)
}

func TestWithContext_NoTraceKeepsLogger(t *testing.T) {
	l := Nop()
	assert.Same(t, l, l.WithContext(context.Background()))
}
