package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	Logger = nil
	assert.NotPanics(t, func() {
		Info("info")
		Warn("warn")
		Error("error")
		Debug("debug")
	})
}

func TestInitLoggerToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, false)
	t.Cleanup(func() { Logger = nil })

	Debug("hidden at info level")
	Info("related lookup queued", "slug", "title-one")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "related lookup queued", entry["msg"])
	assert.Equal(t, "title-one", entry["slug"])
	assert.Equal(t, "INFO", entry["level"])
}
