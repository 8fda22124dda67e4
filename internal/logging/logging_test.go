package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Warn().Str("component", "scheduler").Msg("fetch failed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "scheduler", entry["component"])
	require.Contains(t, entry, "time")
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{Level: "bogus"}, &buf)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = newLogger(Config{}, &buf)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{Format: "console"}, &buf)
	logger.Info().Msg("attached")
	require.Contains(t, buf.String(), "attached")
	require.NotContains(t, buf.String(), `"message"`)
}
