package log

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/reqctx"
	"github.com/lmittmann/tint"
)

// New builds the process logger: colored text for local development, JSON
// everywhere else. Records are enriched from context by ContextHandler.
func New(env string, level slog.Level, w io.Writer) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(NewContextHandler(inner))
}

// ContextHandler wraps an slog.Handler and copies request_id and user_id
// from the record's context, when present.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := reqctx.RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id := reqctx.UserID(ctx); id != "" {
		r.AddAttrs(slog.String("user_id", id))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
