package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dorozco/marketpulse-backend/pkg/env"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
}

// Logger is a zerolog wrapper that carries per-request fields through the
// context. Handlers enrich the context once; every log call downstream picks
// the fields up automatically.
type Logger struct {
	base      zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

// New builds the service logger. LOG_FORMAT=console switches to the
// human-readable writer for local development, everything else emits JSON.
func New(opts Options) *Logger {
	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if env.Get("LOG_FORMAT", "json") == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.New(out).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(level)

	return &Logger{base: base, warnStack: opts.WarnStack}
}

// ParseLevel maps a config string to a zerolog level. Empty or unrecognized
// values return NoLevel so New can apply its default.
func ParseLevel(value string) zerolog.Level {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return zerolog.NoLevel
	}
	lvl, err := zerolog.ParseLevel(normalized)
	if err != nil {
		return zerolog.NoLevel
	}
	return lvl
}

func (l *Logger) fromCtx(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

// WithField returns a context whose log entries carry the given field.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.fromCtx(ctx).With().Interface(key, value).Logger()
	return context.WithValue(ctx, ctxKey{}, entry)
}

// WithFields attaches several fields at once.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.fromCtx(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	return context.WithValue(ctx, ctxKey{}, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithComponent tags entries produced by background components (scheduler,
// consumers) that run outside a request scope.
func (l *Logger) WithComponent(ctx context.Context, component string) context.Context {
	return l.WithField(ctx, "component", component)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	entry := l.fromCtx(ctx)
	entry.Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	entry := l.fromCtx(ctx)
	event := entry.Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	entry := l.fromCtx(ctx)
	event := entry.Error().Str("stack", stackTrace())
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
