package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_FallsBackToInfo(t *testing.T) {
	log := New(Config{Level: "nonsense", Encoding: "console"})

	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_ParsesLevel(t *testing.T) {
	log := New(Config{Level: "DEBUG", Encoding: "json"})
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log = New(Config{Level: "error"})
	assert.False(t, log.Core().Enabled(zap.WarnLevel))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	WithRequestID(ctx, base).Info("hello")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestWithRequestID_NilLogger(t *testing.T) {
	assert.NotNil(t, WithRequestID(context.Background(), nil))
}
