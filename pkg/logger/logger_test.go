package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).Named("quotes")

	log.WithFields(map[string]interface{}{"symbol": "NVDA", "attempt": 2}).
		WithError(errors.New("upstream timeout")).
		Warn("Quote fetch failed")
	log.Debug("filtered out")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "quotes", entry["logger"])
	assert.Equal(t, "Quote fetch failed", entry["message"])
	assert.Equal(t, "NVDA", entry["symbol"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "upstream timeout", entry["error"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestNewWithWriter_DevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("debug", &buf, "development").WithField("tier", "VIP").Debug("resolved")

	out := buf.String()
	assert.Contains(t, out, "resolved")
	assert.Contains(t, out, `"tier": "VIP"`)
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
