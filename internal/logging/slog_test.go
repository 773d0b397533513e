package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufLogger(lvl slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: lvl})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	l, buf := newBufLogger(slog.LevelDebug)
	ctx := context.Background()

	l.Debug(ctx, "d1")
	l.Info(ctx, "i1")
	l.Warn(ctx, "w1")
	l.Error(ctx, "e1")

	out := buf.String()
	assert.Contains(t, out, "d1")
	assert.Contains(t, out, "i1")
	assert.Contains(t, out, "w1")
	assert.Contains(t, out, "e1")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufLogger(slog.LevelWarn)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "also hidden")
	l.Warn(ctx, "visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	l, buf := newBufLogger(slog.LevelInfo)

	child := l.With("component", "chat")
	require.NotNil(t, child)
	child.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "component=chat")
}

func TestNewDefault_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := NewDefault("bogus")
	require.NotNil(t, l)
}
