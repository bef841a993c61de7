package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/docmorph/api/internal/config"
)

// Logger wraps slog with a per-component attribute so every line can be
// traced back to the subsystem that emitted it.
type Logger struct {
	inner *slog.Logger
}

func Init() {
	options := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	var handler slog.Handler
	if config.IsProd {
		options.Level = config.LogLevelProd
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(component string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", component),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// WithTrace pulls the request trace id out of ctx, if one was injected.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if trace, ok := ctx.Value(config.TraceIDKey).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}
