package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("json file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger := NewLoggerFromConfig(&Config{Level: "debug", Format: "json", Output: path})
		logger.Debug().Str("field", "dob").Msg("validated")

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "dob", entry["field"])
		assert.Equal(t, "validated", entry["message"])
	})
}

func TestParseTimeFormat(t *testing.T) {
	assert.Equal(t, "3:04PM", parseTimeFormat("kitchen"))
	assert.Equal(t, "2006-01-02T15:04:05Z07:00", parseTimeFormat("rfc3339"))
	assert.Equal(t, "15:04:05", parseTimeFormat("15:04:05"))
	assert.Equal(t, "3:04PM", parseTimeFormat("nonsense"))
}

func TestContextLogger(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, Default(), FromContext(context.Background()))
	})

	t.Run("fields accumulate", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, zerolog.InfoLevel)

		ctx := WithLogger(context.Background(), &logger)
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithSession(ctx, "sess-1")
		ctx = WithOperation(ctx, "submit")

		FromContext(ctx).Info().Msg("hello")

		out := buf.String()
		assert.Contains(t, out, `"request_id":"req-1"`)
		assert.Contains(t, out, `"session_id":"sess-1"`)
		assert.Contains(t, out, `"operation":"submit"`)
		assert.Equal(t, "req-1", RequestID(ctx))
	})

	t.Run("missing request id", func(t *testing.T) {
		assert.Empty(t, RequestID(context.Background()))
	})
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger(t)
	tl.Info().Msg("first")
	tl.Debug().Msg("second")

	assert.Len(t, tl.Lines(), 2)
	assert.True(t, tl.Contains("second"))
	tl.AssertContains(t, "first")
	assert.False(t, strings.Contains(tl.Output(), "third"))
}

func TestCreateDefaultLogger(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	logger := createDefaultLogger()
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
