package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	logger = nil
	assert.NotPanics(t, func() {
		Debug("test debug", "key", "value")
		Info("test info", "key", "value")
		Warn("test warn", "key", "value")
		Error("test error", "key", "value")
		With("feed").Info("discarded")
	})
}

func TestSetOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.InfoLevel)

	Debug("hidden")
	Info("shown", "cursor", "c1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "cursor=c1")
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.DebugLevel)

	With("search").Debug("issued", "q", "alice")

	assert.Contains(t, buf.String(), "search")
	assert.Contains(t, buf.String(), "q=alice")
}
