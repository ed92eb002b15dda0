package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultWriter(t *testing.T) {
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON})
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"empty uses pretty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			logger.Info("book added")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"book added"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "book added")
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Environment: "development", Writer: &buf})
	logger.Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_NilOptionsDefaultsToInfo(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))

	logger.Info("saved document", "collection", "books", "count", 3, "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "saved document")
	assert.Contains(t, out, "collection=books")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, `note="two words"`)
}

func TestPrettyHandler_GroupsQualifyKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil)).
		With("request_id", "abc").
		WithGroup("backup")

	logger.Info("created", "size", 10, slog.Group("manifest", "version", 1))

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "backup.size=10")
	assert.Contains(t, out, "backup.manifest.version=1")
}

func TestPrettyHandler_LevelFormatting(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			logger.Log(context.Background(), tt.level, "msg")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	logger.Info("with source")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue_Time(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T12:00:00Z", formatValue(slog.TimeValue(ts)))
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Writer: &buf})

	logger.WithError(errors.New("disk full")).Warn("save failed")

	assert.Contains(t, buf.String(), `"error":"disk full"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Writer: &buf})

	logger.WithComponent("backup").Info("done")

	assert.Contains(t, buf.String(), `"component":"backup"`)
}

func TestPrettyHandler_ComponentTag(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatPretty, Writer: &buf})

	logger.WithComponent("catalog").Info("book added", "book_id", "book-1")

	out := buf.String()
	assert.Contains(t, out, "[catalog]")
	assert.Contains(t, out, "book_id=book-1")
	assert.NotContains(t, out, "component=")
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value.String())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Error("dropped") })
}
