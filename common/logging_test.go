package common

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerToRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test", WithLogLevel(log.WarnLevel))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("clip missing", "clip", "Run")
	out := buf.String()
	assert.Contains(t, out, "clip missing")
	assert.Contains(t, out, "clip=Run")
	assert.Contains(t, out, "test")
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
