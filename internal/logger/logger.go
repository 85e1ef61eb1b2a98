package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text-structured logger writing to w. Debug records are kept
// only when debug is set.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Default is the default logger instance.
var Default = New(os.Stderr, false)

// Or returns l, or Default when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Default
	}
	return l
}
