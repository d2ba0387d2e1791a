package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func decodeLines(t *testing.T, s string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range splitNonEmpty(s) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestJSONLogger_NewJSONLogger_Stdout(t *testing.T) {
	logger, err := NewJSONLogger(LoggerConfig{Level: LevelInfo})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, logger.Close())
}

func TestJSONLogger_NewJSONLogger_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, err := NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		Verbose:    true,
	})
	require.NoError(t, err)

	logger.Info("hello", LogField("key", "val"))
	logger.Debug("debug msg")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	entries := decodeLines(t, string(data))
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, "val", entries[0]["key"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewJSONLogger(LoggerConfig{
		Writer: &buf,
		Level:  LevelWarn,
	})
	require.NoError(t, err)

	logger.Debug("should not appear")
	logger.Info("should not appear")
	logger.Warn("should appear")
	logger.Error("should appear")

	assert.Len(t, splitNonEmpty(buf.String()), 2)
}

func TestJSONLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewJSONLogger(LoggerConfig{
		Writer: &buf,
		Fields: map[string]any{"service": "learnfil"},
	})
	require.NoError(t, err)

	child := logger.WithFields(StringField("lesson_id", "1-1"))
	child.Info("run", IntField("assertions", 3), BoolField("passed", true))

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "learnfil", entries[0]["service"])
	assert.Equal(t, "1-1", entries[0]["lesson_id"])
	assert.Equal(t, float64(3), entries[0]["assertions"])
	assert.Equal(t, true, entries[0]["passed"])
}

func TestJSONLogger_Close_DropsLaterEntries(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewJSONLogger(LoggerConfig{Writer: &buf})
	require.NoError(t, err)

	child := logger.WithFields(StringField("k", "v"))
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	logger.Info("dropped")
	child.Info("dropped too")
	assert.Empty(t, buf.String())
}

func TestJSONLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewJSONLogger(LoggerConfig{Writer: &buf})
	require.NoError(t, err)

	logger.Error("failed", ErrorField(errors.New("boom")))
	logger.Error("nil", ErrorField(nil))

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0]["error"])
	assert.Equal(t, "<nil>", entries[1]["error"])
}
