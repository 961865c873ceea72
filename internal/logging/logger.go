// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger shared by every component.
//
// The TUI owns stdout, so loggers normally write JSON lines to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level is a logging threshold.
type Level int

const (
	LevelDisabled Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Fields is a set of structured attributes.
type Fields map[string]any

// Logger writes structured log records.
type Logger interface {
	With(fields Fields) Logger
	WithField(name string, value any) Logger
	WithError(err error) Logger
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

var slogLevelMap = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// ParseLevel converts a config value into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off", "none":
		return LevelDisabled, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type logger struct {
	impl *slog.Logger
}

// New returns a JSON logger writing to w. LevelDisabled yields a no-op logger.
func New(level Level, w io.Writer) Logger {
	if level == LevelDisabled || w == nil {
		return Nop()
	}

	impl := slog.New(slog.NewJSONHandler(
		w,
		&slog.HandlerOptions{Level: slogLevelMap[level]},
	))
	return logger{impl}
}

// OpenFile creates the parent directory of path and returns a logger
// appending to it, together with the file so the caller can close it.
func OpenFile(level Level, path string) (Logger, io.Closer, error) {
	if level == LevelDisabled {
		return Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, f), f, nil
}

func (l logger) With(fields Fields) Logger {
	if len(fields) == 0 {
		return l
	}

	l.impl = l.impl.With(convertFields(fields)...)
	return l
}

func (l logger) WithField(name string, v any) Logger {
	l.impl = l.impl.With(name, v)
	return l
}

func (l logger) WithError(err error) Logger {
	if err == nil {
		return l
	}

	l.impl = l.impl.With("error", err.Error())
	return l
}

func (l logger) Debug(msg string) { l.impl.Debug(msg) }
func (l logger) Info(msg string) { l.impl.Info(msg) }
func (l logger) Warn(msg string) { l.impl.Warn(msg) }
func (l logger) Error(msg string) { l.impl.Error(msg) }

func convertFields(fields Fields) []any {
	result := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		result = append(result, key, value)
	}
	return result
}

// =============================================================================
// NO-OP LOGGER
// =============================================================================

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type nop struct{}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nop{}
}

func (n nop) With(Fields) Logger { return n }
func (n nop) WithField(string, any) Logger { return n }
func (n nop) WithError(error) Logger { return n }
func (n nop) Debug(string) {}
func (n nop) Info(string) {}
func (n nop) Warn(string) {}
func (n nop) Error(string) {}
