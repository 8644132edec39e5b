package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLogger(t *testing.T) {
	t.Run("writes structured lines with default fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewZeroLogger(&buf, LevelInfo, Fields{"service": "engine"})

		l.Info("market created", map[string]interface{}{"outcomes": 3})

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "info", line["level"])
		assert.Equal(t, "market created", line["message"])
		assert.Equal(t, "engine", line["service"])
		assert.Equal(t, float64(3), line["outcomes"])
	})

	t.Run("errors carry the error text", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewZeroLogger(&buf, LevelInfo, nil)

		l.Error(errors.New("journal unavailable"), nil)

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "error", line["level"])
		assert.Equal(t, "journal unavailable", line["error"])
	})

	t.Run("level filters output", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewZeroLogger(&buf, LevelError, nil)

		l.Info("hidden", nil)
		l.Debug("hidden", nil)
		assert.Empty(t, buf.String())

		l.SetLevel(LevelDebug)
		l.Debug("shown", nil)
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("anything"))
	assert.Equal(t, "ERROR", LevelError.String())
}
