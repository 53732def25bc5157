// Package observability configures the process logger and derives
// per-request loggers that carry the trace ID.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fishermate/fishermate/common/trace"
)

// ParseLevel maps "debug", "warn" and "error" to slog levels; anything else
// is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// NewLogger builds a JSON logger when format is "json" and a text logger
// otherwise.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup installs a stdout logger as the slog default.
func Setup(level, format string) {
	slog.SetDefault(NewLogger(os.Stdout, level, format))
}

// WithTrace returns base (or the default logger when base is nil) extended
// with the trace_id found in ctx.
func WithTrace(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := trace.FromContext(ctx); id != "" {
		return base.With("trace_id", id)
	}
	return base
}
