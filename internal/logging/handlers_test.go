package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockHandler is a test handler that can be configured to fail
type mockHandler struct {
	enabled   bool
	handleErr error
	handled   int
}

func (h *mockHandler) Enabled(context.Context, slog.Level) bool { return h.enabled }

func (h *mockHandler) Handle(context.Context, slog.Record) error {
	h.handled++
	return h.handleErr
}

func (h *mockHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *mockHandler) WithGroup(string) slog.Handler      { return h }

func TestLevelFilter_OnlyWarningsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	filter := NewLevelFilter(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}), slog.LevelWarn)
	logger := slog.New(filter)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLevelFilter_Enabled(t *testing.T) {
	filter := NewLevelFilter(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}), slog.LevelWarn)

	assert.False(t, filter.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, filter.Enabled(context.Background(), slog.LevelWarn), "wrapped handler is stricter")
	assert.True(t, filter.Enabled(context.Background(), slog.LevelError))
}

func TestLevelFilter_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	filter := NewLevelFilter(slog.NewTextHandler(&buf, nil), slog.LevelWarn)
	logger := slog.New(filter).With("component", "state").WithGroup("op")

	logger.Info("dropped")
	logger.Warn("kept", "version", 3)

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "component=state")
	assert.Contains(t, out, "op.version=3")
}

func TestLevelFilter_HandleBelowThreshold(t *testing.T) {
	inner := &mockHandler{enabled: true}
	filter := NewLevelFilter(inner, slog.LevelWarn)

	assert.NoError(t, filter.Handle(context.Background(), slog.Record{Level: slog.LevelInfo}))
	assert.Equal(t, 0, inner.handled)
	assert.NoError(t, filter.Handle(context.Background(), slog.Record{Level: slog.LevelError}))
	assert.Equal(t, 1, inner.handled)
}

func TestMultiHandler_FansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiHandler(
		slog.NewTextHandler(&buf1, nil),
		slog.NewJSONHandler(&buf2, nil),
	)
	slog.New(multi).With("component", "rest").Info("hello", "key", "value")

	assert.Contains(t, buf1.String(), "msg=hello")
	assert.Contains(t, buf1.String(), "component=rest")
	assert.Contains(t, buf2.String(), `"msg":"hello"`)
	assert.Contains(t, buf2.String(), `"component":"rest"`)
}

func TestMultiHandler_Enabled(t *testing.T) {
	multi := NewMultiHandler(&mockHandler{enabled: false}, &mockHandler{enabled: true})
	assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))

	none := NewMultiHandler(&mockHandler{enabled: false})
	assert.False(t, none.Enabled(context.Background(), slog.LevelInfo))

	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandler_ErrorsDoNotStopFanOut(t *testing.T) {
	errA := errors.New("a failed")
	first := &mockHandler{enabled: true, handleErr: errA}
	second := &mockHandler{enabled: true}
	skipped := &mockHandler{enabled: false}

	err := NewMultiHandler(first, second, skipped).Handle(context.Background(), slog.Record{Level: slog.LevelInfo})

	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 1, first.handled)
	assert.Equal(t, 1, second.handled)
	assert.Equal(t, 0, skipped.handled)
}

func TestMultiHandler_WithGroupEmpty(t *testing.T) {
	multi := NewMultiHandler(&mockHandler{enabled: true})
	assert.Same(t, multi, multi.WithGroup(""))
}
