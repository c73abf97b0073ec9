package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true})

	log.WithFields(map[string]interface{}{"component": "dispatcher"}).
		Error(errors.New("smtp down"), "failed to deliver", "appointment_id", "a-1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "failed to deliver", entry["message"])
	assert.Equal(t, "smtp down", entry["error"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, "a-1", entry["appointment_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: WarnLevel, Output: &buf, JSON: true})

	log.Info("ignored")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("chatty"))
}
