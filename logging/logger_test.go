package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*SwarmChainLogger)(nil)
	_ Logger = NoOpLogger{}
)

func newBufferLogger(level LogLevel) (*SwarmChainLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&LoggerConfig{
		Level:     level,
		Format:    "json",
		Output:    &buf,
		Component: "test",
	}), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		out = append(out, entry)
	}
	return out
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
}

func TestSwarmChainLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "shown too", entries[1]["msg"])
}

func TestSwarmChainLogger_ContextualCloning(t *testing.T) {
	base, buf := newBufferLogger(LogLevelInfo)
	derived := base.WithComponent("chain").
		WithTrace("trace-1", "pipeline").
		WithContext("attempt", 2)

	derived.Info("step done")
	base.Info("untouched")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "chain", entries[0]["component"])
	assert.Equal(t, "trace-1", entries[0]["trace_id"])
	assert.Equal(t, "pipeline", entries[0]["chain_key"])
	assert.Equal(t, float64(2), entries[0]["attempt"])

	// The base logger kept its original identity.
	assert.Equal(t, "test", entries[1]["component"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestSwarmChainLogger_LogStepExecution(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.LogStepExecution("fetch", 5*time.Millisecond, true, nil)
	l.LogStepExecution("summarize", time.Millisecond, false, errors.New("boom"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "fetch", entries[0]["step_key"])
	assert.Equal(t, true, entries[0]["success"])
	assert.Equal(t, "boom", entries[1]["error"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestNoOpLogger_DoesNothing(t *testing.T) {
	var l NoOpLogger
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
