package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "a", Value: 1}, LogField("a", 1))
	assert.Equal(t, Field{Key: "s", Value: "x"}, StringField("s", "x"))
	assert.Equal(t, Field{Key: "n", Value: 7}, IntField("n", 7))
	assert.Equal(t, Field{Key: "b", Value: false}, BoolField("b", false))
	assert.Equal(t,
		Field{Key: "d", Value: int64(1500)},
		DurationField("d", 1500*time.Millisecond),
	)
}
