package logging

import (
	"bytes"
	"context"
	"customer-management/internal/config"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggerConfig{Level: "warn", Encoding: "json"}))

	logger.InfoContext(context.Background(), "dropped")
	logger.WarnContext(context.Background(), "kept", slog.Int64("customerID", 7))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.EqualValues(t, 7, record["customerID"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggerConfig{Level: "info", Encoding: "text"}))

	logger.Info("hello", slog.String("component", "test"))

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "component=test")
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(config.LoggerConfig{Level: "error"})

	assert.Same(t, logger, slog.Default())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
