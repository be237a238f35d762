// Package logging wraps log/slog behind a small structured Logger
// interface, in the shape used throughout the rest of the corpus:
// context-first methods, immutable With/WithError chaining, and a
// Config selecting level/format/output.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"log/slog"
)

// Logger is the structured logging interface every package in this
// module depends on, never *slog.Logger directly.
type Logger interface {
	Debug(ctx context.Context, message string)
	Debugf(ctx context.Context, format string, args ...interface{})
	Info(ctx context.Context, message string)
	Infof(ctx context.Context, format string, args ...interface{})
	Warn(ctx context.Context, message string)
	Warnf(ctx context.Context, format string, args ...interface{})
	Error(ctx context.Context, message string)
	Errorf(ctx context.Context, format string, args ...interface{})

	With(key string, value interface{}) Logger
	WithError(err error) Logger
}

// Config selects the logger's level, encoding, and destination.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
	Writer io.Writer
}

// DefaultConfig logs text at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Writer: os.Stderr}
}

type logger struct {
	slog   *slog.Logger
	fields map[string]interface{}
}

// New builds a Logger from cfg.
func New(cfg Config) Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return &logger{slog: slog.New(handler), fields: map[string]interface{}{}}
}

func parseLevel(level string) slog.Level {
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

func (l *logger) args() []any {
	args := make([]any, 0, len(l.fields)*2)
	for k, v := range l.fields {
		args = append(args, k, v)
	}
	return args
}

func (l *logger) Debug(ctx context.Context, message string) {
	l.slog.DebugContext(ctx, message, l.args()...)
}
func (l *logger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.slog.DebugContext(ctx, fmt.Sprintf(format, args...), l.args()...)
}
func (l *logger) Info(ctx context.Context, message string) {
	l.slog.InfoContext(ctx, message, l.args()...)
}
func (l *logger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.slog.InfoContext(ctx, fmt.Sprintf(format, args...), l.args()...)
}
func (l *logger) Warn(ctx context.Context, message string) {
	l.slog.WarnContext(ctx, message, l.args()...)
}
func (l *logger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.slog.WarnContext(ctx, fmt.Sprintf(format, args...), l.args()...)
}
func (l *logger) Error(ctx context.Context, message string) {
	l.slog.ErrorContext(ctx, message, l.args()...)
}
func (l *logger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.slog.ErrorContext(ctx, fmt.Sprintf(format, args...), l.args()...)
}

func (l *logger) With(key string, value interface{}) Logger {
	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &logger{slog: l.slog, fields: fields}
}

func (l *logger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.With("error", err.Error())
}
