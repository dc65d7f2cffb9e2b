package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/palemoky/draw-guess/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console"} {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			log, err := New(config.LogConfig{Level: level, Format: format})
			require.NoError(t, err, "%s/%s", format, level)
			assert.NotNil(t, log)
		}
	}
}

func TestNew_LevelIsApplied(t *testing.T) {
	t.Parallel()

	log, err := New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, err := New(config.LogConfig{Level: "trace", Format: "json"})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestLogPanic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	LogPanic(zap.New(core), "boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
	assert.Contains(t, entry.ContextMap(), "stack")
}
