package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingAlerter struct {
	messages []string
}

func (r *recordingAlerter) SendAlert(msg string) error {
	r.messages = append(r.messages, msg)
	return nil
}

func TestTelegramHandler_AlertsOnlyOnError(t *testing.T) {
	var buf bytes.Buffer
	alerter := &recordingAlerter{}
	l := NewWithWriter(&buf, alerter, "debug")

	l.Info("upload finished", "content_id", "abc")
	l.Error("orphaned remote asset", "content_id", "xyz")

	assert.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "orphaned remote asset")
	assert.Contains(t, alerter.messages[0], "content_id=xyz")
	assert.Contains(t, buf.String(), "upload finished")
}

func TestTelegramHandler_WithAttrsKeepsAlerter(t *testing.T) {
	var buf bytes.Buffer
	alerter := &recordingAlerter{}
	l := NewWithWriter(&buf, alerter, "info").With("request_id", "r-1")

	l.Error("boom")

	assert.Len(t, alerter.messages, 1)
	assert.Contains(t, buf.String(), `"request_id":"r-1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}
