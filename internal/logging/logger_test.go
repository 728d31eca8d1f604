package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return l, &buf
}

func TestLevelThreshold(t *testing.T) {
	t.Parallel()

	l, buf := newTestLogger()

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN shown")

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "DEBUG now visible")
}

func TestKeyValueFormatting(t *testing.T) {
	t.Parallel()

	l, buf := newTestLogger()
	l.Error("poll failed", "run", "run-1", "attempt", 3)

	line := buf.String()
	assert.Equal(t, "2026-08-30 12:00:00 ERROR poll failed attempt=3 run=run-1\n", line)
}

func TestValueQuoting(t *testing.T) {
	t.Parallel()

	l, buf := newTestLogger()
	l.Warn("status", "msg", "two words", "err", errors.New("boom boom"))

	line := buf.String()
	assert.Contains(t, line, `msg="two words"`)
	assert.Contains(t, line, `err="boom boom"`)
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	l, buf := newTestLogger()
	child := l.With("run", "run-1")

	child.Warn("tick skipped")
	assert.Contains(t, buf.String(), "run=run-1")

	// Call-site keys override inherited fields.
	buf.Reset()
	child.Warn("tick skipped", "run", "run-2")
	assert.Contains(t, buf.String(), "run=run-2")
	assert.NotContains(t, buf.String(), "run-1")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{" WARN ", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelWarn},
		{"", LevelWarn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestLevelString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
