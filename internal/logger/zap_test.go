package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "debug", Format: "json", Output: path, Service: "analytics"}, SentryConfig{})
	require.NoError(t, err)

	log.Info("analysis completed", zap.String("publication", "platformer"))
	require.NoError(t, log.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "analysis completed", entry["message"])
	assert.Equal(t, "analytics", entry["service"])
	assert.Equal(t, "platformer", entry["publication"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "loud", Output: path}, SentryConfig{})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	require.NoError(t, log.Close())
}

func TestFieldsToMap(t *testing.T) {
	m := fieldsToMap([]zapcore.Field{
		zap.String("publication", "platformer"),
		zap.Int("posts", 12),
		zap.Bool("degraded", true),
		zap.Error(errors.New("boom")),
	})

	assert.Equal(t, "platformer", m["publication"])
	assert.EqualValues(t, 12, m["posts"])
	assert.Equal(t, true, m["degraded"])
	assert.Equal(t, "boom", m["error"])
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, "error", string(sentryLevel(zapcore.ErrorLevel)))
	assert.Equal(t, "fatal", string(sentryLevel(zapcore.PanicLevel)))
	assert.Equal(t, "warning", string(sentryLevel(zapcore.WarnLevel)))
}
