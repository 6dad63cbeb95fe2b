package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lumiforge/mediavault-backend/internal/telegram"
)

// Alerter delivers error-level records to an on-call channel.
type Alerter interface {
	SendAlert(msg string) error
}

type TelegramHandler struct {
	slog.Handler
	tg Alerter
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError && h.tg != nil {
		msg := r.Message
		r.Attrs(func(a slog.Attr) bool {
			msg += " " + a.Key + "=" + a.Value.String()
			return true
		})
		if err := h.tg.SendAlert(msg); err != nil {
			// Пишем напрямую в stderr, чтобы не уйти в рекурсию через slog
			os.Stderr.WriteString("Failed to send telegram alert: " + err.Error() + "\n")
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TelegramHandler{
		Handler: h.Handler.WithAttrs(attrs),
		tg:      h.tg,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		Handler: h.Handler.WithGroup(name),
		tg:      h.tg,
	}
}

// New builds the process logger: JSON on stdout, errors mirrored to Telegram.
func New(tg *telegram.Client, level string) *slog.Logger {
	var alerter Alerter
	if tg.Enabled() {
		alerter = tg
	}
	return NewWithWriter(os.Stdout, alerter, level)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, alerter Alerter, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(&TelegramHandler{
		Handler: jsonHandler,
		tg:      alerter,
	})
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
