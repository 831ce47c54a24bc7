package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	log.Info("test message", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, "\"level\":\"INFO\"")
	assert.Contains(t, out, "\"key\":\"value\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	var buf bytes.Buffer

	// Production defaults to JSON.
	log := New(Config{Environment: "production", Writer: &buf})
	log.Info("prod message")
	assert.Contains(t, buf.String(), "\"msg\":\"prod message\"")

	// Development defaults to pretty output.
	buf.Reset()
	log = New(Config{Environment: "development", Writer: &buf})
	log.Info("dev message")
	assert.NotContains(t, buf.String(), "\"msg\"")
	assert.Contains(t, buf.String(), "dev message")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  slog.LevelWarn,
		Format: "pretty",
		Writer: &buf,
	})

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "visible warning")
}

func TestPrettyHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  slog.LevelInfo,
		Format: "pretty",
		Writer: &buf,
	})

	log.Info("with attrs", "book_id", "book-123", "count", 7)

	out := buf.String()
	assert.Contains(t, out, "book_id=book-123")
	assert.Contains(t, out, "count=7")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	log.WithError(errors.New("boom")).Error("operation failed")

	out := buf.String()
	assert.Contains(t, out, "operation failed")
	assert.Contains(t, out, "boom")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}
