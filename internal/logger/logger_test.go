package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "case and space", level: " WARN ", expected: zerolog.WarnLevel},
		{name: "unknown falls back to info", level: "chatty", expected: zerolog.InfoLevel},
		{name: "empty falls back to info", level: "", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, false, &bytes.Buffer{})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	var buf bytes.Buffer

	Setup("info", false, &buf)
	log.Info().Str("session", "abc").Msg("session created")
	log.Debug().Msg("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["session"])
	assert.Equal(t, "session created", entry["message"])
	assert.Contains(t, entry, "time")
}
