package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogsThroughAssignedVariable(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info"})
	log = log.Output(&buf)

	log.Error().Str("component", "bootstrap").Msg("configuration failed")

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"message":"configuration failed"`)
	assert.Contains(t, buf.String(), `"component":"bootstrap"`)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn"})
	log = log.Output(&buf)

	log.Info().Msg("filtered")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "verbose"})
	log = log.Output(&buf)

	log.Debug().Msg("filtered")
	assert.Empty(t, buf.String())

	log.Info().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
