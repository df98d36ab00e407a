package logger

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logging contract used across the codebase.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)

	With(keyvals ...any) Logger
}

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Options struct {
	Level Level

	Output io.Writer
	JSON   bool
}

func New(opts Options) Logger {
	output := opts.Output

	if output == nil {
		output = os.Stderr
	}

	l := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           parseLevel(opts.Level),
		ReportTimestamp: true,
	})

	if opts.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}

	return &charmLogger{l}
}

// Noop returns a logger that discards everything. Used in tests.
func Noop() Logger {
	return &charmLogger{charmlog.NewWithOptions(io.Discard, charmlog.Options{})}
}

func parseLevel(level Level) charmlog.Level {
	switch level {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{c.l.With(keyvals...)}
}

type contextKey struct{}

func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger attached to ctx, or a default stderr logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}

	return New(Options{})
}
