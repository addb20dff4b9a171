// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level represents logging levels.
type Level slog.Level

// Logging levels.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerInterface is the logging contract consumed by services.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger wraps slog with context-first convenience methods.
type Logger struct {
	handler *slog.Logger
}

// New creates a Logger writing structured text to w at the given level.
// Service is attached to every record; extra attrs are optional.
func New(w io.Writer, level Level, service string, attrs []slog.Attr) *Logger {
	opts := &slog.HandlerOptions{Level: slog.Level(level)}
	h := slog.NewTextHandler(w, opts).WithAttrs(append(
		[]slog.Attr{slog.String("service", service)}, attrs...,
	))
	return &Logger{handler: slog.New(h)}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.handler.DebugContext(ctx, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.handler.InfoContext(ctx, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.handler.WarnContext(ctx, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.handler.ErrorContext(ctx, msg, args...)
}

// With returns a Logger carrying additional attributes.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{handler: l.handler.With(args...)}
}
