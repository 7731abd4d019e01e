package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(Config{Level: "info", Console: true}, &buf)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Int("slot", 3).Msg("module created")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "module created")
	assert.Contains(t, out, "slot:3")
	assert.NoError(t, l.Close())
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(Config{Level: "debug", Console: true, JSONFormat: true}, &buf)
	require.NoError(t, err)

	l.Debug().Str("kind", "Filter").Msg("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Filter", entry["kind"])
	assert.Equal(t, "created", entry["message"])
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fxrack.log")

	l, err := New(Config{Level: "warn", File: true, FilePath: path, MaxSize: 1}, nil)
	require.NoError(t, err)

	l.Info().Msg("skipped")
	l.Warn().Msg("desync repaired")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "desync repaired")
	assert.NotContains(t, string(data), "skipped")
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Level: "info", File: true}, nil)
	assert.Error(t, err)
}

func TestNoOutputsIsNop(t *testing.T) {
	l, err := New(Config{Level: "info"}, nil)
	require.NoError(t, err)

	l.Error().Msg("nowhere")
	assert.NoError(t, l.Close())
}
