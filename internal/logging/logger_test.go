package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})
	logger.Info("hello", "key", "value")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "text", Output: &buf})
	logger.Info("hello there")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "hello there")
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Format: "text", Output: &buf})
	logger.Debug("should not appear")
	logger.Info("should not appear either")
	require.NoError(t, logger.Sync())
	assert.Empty(t, buf.String())

	logger.Warn("this appears")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "this appears")
}

func TestLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	coreLogger := logger.WithCore(2)
	coreLogger.Info("scheduler tick")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), `"core":2`)

	buf.Reset()
	portLogger := coreLogger.WithPort("eth0")
	portLogger.Info("rx burst")
	require.NoError(t, logger.Sync())
	out := buf.String()
	assert.Contains(t, out, `"core":2`)
	assert.Contains(t, out, `"port":"eth0"`)
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Format: "text", Output: &buf}))

	Debug("debug message", "key", "value")
	require.NoError(t, Default().Sync())
	assert.Contains(t, buf.String(), "debug message")

	buf.Reset()
	Error("error message")
	require.NoError(t, Default().Sync())
	assert.Contains(t, buf.String(), "error message")
}
