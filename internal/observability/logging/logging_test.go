package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{ServiceName: "auth", Environment: "test", Level: "info", Output: &buf})

	logger.Info("hello", "user_id", "42")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "auth", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "42", line["user_id"])
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{level: "debug", debugSeen: true, infoSeen: true},
		{level: "", debugSeen: false, infoSeen: true},
		{level: "warn", debugSeen: false, infoSeen: false},
		{level: "error", debugSeen: false, infoSeen: false},
	}
	for _, tc := range tests {
		t.Run("level="+tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(Config{Level: tc.level, Output: &buf})

			logger.Debug("d")
			assert.Equal(t, tc.debugSeen, buf.Len() > 0)

			buf.Reset()
			logger.Info("i")
			assert.Equal(t, tc.infoSeen, buf.Len() > 0)
		})
	}
}
