package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("catalog loaded", "movies", 3)

	out := buf.String()
	assert.Contains(t, out, "catalog loaded")
	assert.Contains(t, out, `"movies": 3`)
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("op", "session.Manager.Restore")

	log.Info("session restored", "user_id", 7)

	out := buf.String()
	assert.Contains(t, out, `"op": "session.Manager.Restore"`)
	assert.Contains(t, out, `"user_id": 7`)
}
