package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info().Str("path", "ledger.qif").Msg("ledger written")

	out := buf.String()
	assert.Contains(t, out, `"path":"ledger.qif"`)
	assert.Contains(t, out, "ledger written")
	assert.Contains(t, out, "time")
}

func TestNewLevels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(true).GetLevel())
}
