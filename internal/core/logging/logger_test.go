package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestComponent(t *testing.T) {
	buf := captureGlobal(t)

	logger := Component("panel")
	logger.Info().Msg("synced")

	entry := decodeLine(t, buf)
	assert.Equal(t, "panel", entry["cmp"])
	assert.Equal(t, "synced", entry["message"])
	assert.NotContains(t, entry, "table")
}

func TestForTable(t *testing.T) {
	buf := captureGlobal(t)

	logger := ForTable("selection-store", "smartlp_entries")
	logger.Warn().Msg("write failed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "selection-store", entry["cmp"])
	assert.Equal(t, "smartlp_entries", entry["table"])
	assert.Equal(t, "warn", entry["level"])
}
