// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package rtlog is the runtime's structured logger: an Info/Warn/Error/
// Debug key-value API built directly on log/slog, the closest same-shape
// standard-library surface available.
package rtlog

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps an *slog.Logger with a ctx-free, variadic key/value call
// shape.
type Logger struct {
	inner *slog.Logger
}

// New builds a Logger writing JSON-formatted records to standard error at
// or above level.
func New(level slog.Level) *Logger {
	return &Logger{inner: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// With returns a Logger that always includes the given key/value pairs,
// e.g. a "module" or "thread" field scoped to one subsystem.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Log(context.Background(), slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Log(context.Background(), slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Log(context.Background(), slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Log(context.Background(), slog.LevelError, msg, args...) }

// Default is the package-level logger used by call sites that don't carry
// their own Logger reference.
var Default = New(slog.LevelInfo)

func Debug(msg string, args ...any) { Default.Debug(msg, args...) }
func Info(msg string, args ...any)  { Default.Info(msg, args...) }
func Warn(msg string, args ...any)  { Default.Warn(msg, args...) }
func Error(msg string, args ...any) { Default.Error(msg, args...) }
