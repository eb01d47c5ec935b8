// Package logging defines the structured-logging interface used across the
// pdfier client and development server, with slog and zerolog backends.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "session initialized", "logged_in", true, "plan", "basic")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Output formats accepted by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a Logger writing to w. "console" selects the zerolog console
// writer, "json" the slog JSON handler, anything else the slog text handler.
func New(format string, w io.Writer, debug bool) Logger {
	if w == nil {
		w = os.Stderr
	}
	switch format {
	case FormatConsole:
		return NewConsoleLogger(w, debug)
	case FormatJSON:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, handlerOptions(debug))))
	default:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, handlerOptions(debug))))
	}
}

func handlerOptions(debug bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}

// Nop discards everything. Handy as a default in constructors and tests.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
