package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Options{Output: &buf, Level: level}), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry LogEntry
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLog_JSONOutput(t *testing.T) {
	log, buf := captureLogger(LevelDebug)

	log.Info("enrollment created",
		EnrollmentID("e-1"),
		Int("seats_remaining", 4),
	)

	entry := lastEntry(t, buf)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "enrollment created", entry.Message)
	assert.Equal(t, "e-1", entry.Fields["enrollment_id"])
	assert.Equal(t, float64(4), entry.Fields["seats_remaining"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLog_LevelFiltering(t *testing.T) {
	log, buf := captureLogger(LevelWarn)

	log.Debug("dropped")
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Equal(t, "WARN", lastEntry(t, buf).Level)
}

func TestWith_FieldsPropagate(t *testing.T) {
	log, buf := captureLogger(LevelInfo)
	scoped := log.With(Component("eventbus"))

	scoped.Info("published", String("event_type", "course.created"))

	entry := lastEntry(t, buf)
	assert.Equal(t, "eventbus", entry.Fields["component"])
	assert.Equal(t, "course.created", entry.Fields["event_type"])

	// The parent logger is untouched.
	log.Info("plain")
	assert.NotContains(t, lastEntry(t, buf).Fields, "component")
}

func TestErr(t *testing.T) {
	log, buf := captureLogger(LevelInfo)

	log.Error("lookup failed", Err(errors.New("connection refused")))
	assert.Equal(t, "connection refused", lastEntry(t, buf).Fields["error"])

	assert.Nil(t, Err(nil).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
