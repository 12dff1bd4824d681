package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		wantOut bool
	}{
		{name: "debug shows debug", level: DebugLevel, wantOut: true},
		{name: "info hides debug", level: InfoLevel, wantOut: false},
		{name: "unknown falls back to info", level: "loud", wantOut: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&Config{Level: test.level, Output: &buf})

			log.Debug("probe")

			assert.Equal(t, test.wantOut, buf.Len() > 0)
		})
	}
}

func TestNew_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: InfoLevel, Output: &buf, JSON: true}).With("component", "session")

	log.Info("signed in", "user_id", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "signed in", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "42", entry["user_id"])
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Discard()
		l.Error("dropped", "k", "v")
		l.With("a", 1).Info("dropped")
	})
}
