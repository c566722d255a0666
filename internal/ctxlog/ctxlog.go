// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Output formats accepted by NewLogger.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// ErrUnknownFormat is returned by NewLogger for an unsupported format.
var ErrUnknownFormat = errors.New("unknown log format")

// ErrUnknownLevel is returned by ParseLevel for an unsupported level name.
var ErrUnknownLevel = errors.New("unknown log level")

type loggerKey struct{}

// LevelVar is the level shared by every logger built by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is used when the context carries no logger.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// NewLogger builds a logger in the given format writing to w at LevelVar.
func NewLogger(format string, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: LevelVar}

	switch strings.ToLower(format) {
	case "", FormatPretty:
		return slog.New(NewPrettyHandler(opts, WithAutoColour(), WithDestinationWriter(w))), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// New returns a copy of ctx carrying logger, or DefaultLogger if logger is nil.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger carried by ctx, or DefaultLogger.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Debug logs at debug level with the logger from ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).DebugContext(ctx, msg, args...)
}

// Info logs at info level with the logger from ctx.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).InfoContext(ctx, msg, args...)
}

// Warn logs at warn level with the logger from ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).WarnContext(ctx, msg, args...)
}

// Error logs at error level with the logger from ctx.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).ErrorContext(ctx, msg, args...)
}

// ParseLevel converts DEBUG, INFO, WARN or ERROR, in any case, to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// LevelEnvVar is the name of the environment variable read at start-up,
// derived from the executable name.
func LevelEnvVar() string {
	exec, _ := os.Executable()
	exec = filepath.Base(exec)
	exec = strings.TrimSuffix(exec, filepath.Ext(exec))
	exec = strings.NewReplacer("-", "_", ".", "_").Replace(exec)

	return strings.ToUpper(exec) + "_LOG_LEVEL"
}

func logLevelFromEnv() slog.Level {
	level, _ := ParseLevel(os.Getenv(LevelEnvVar()))
	return level
}
