package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	initTo(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	log := initTo(&buf, true)
	Component(log, "rss").Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "component=rss")
	assert.Same(t, log, slog.Default())
}
