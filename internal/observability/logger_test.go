package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/particle-field/internal/config"
)

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logger
	cfg.Level = "debug"

	logger := NewLogger(cfg, &buf)
	logger.Debug("field paused")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "field paused")
	assert.Contains(t, out, "particlefield")
}

func TestNewLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logger
	cfg.Level = "warn"

	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logger
	cfg.Level = "loud"

	logger := NewLogger(cfg, &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFileIsJSON(t *testing.T) {
	cfg := config.DefaultConfig().Logger
	cfg.LogFile = filepath.Join(t.TempDir(), "field.log")

	logger := NewLogger(cfg, nil)
	logger.Info("field torn down")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "field torn down", entry["msg"])
}

func TestNewLoggerNoOutputs(t *testing.T) {
	logger := NewLogger(config.DefaultConfig().Logger, nil)
	assert.NotPanics(t, func() { logger.Info("dropped") })
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	globalLogger.Store(nil)
	assert.NotNil(t, GetLogger())
	assert.NotPanics(t, Sync)
}
