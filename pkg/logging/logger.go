// Package logging builds the process-wide slog.Logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, format and caller reporting of the logger.
type Options struct {
	Level         string
	Format        string
	IncludeCaller bool
}

// New builds a slog.Logger writing to stdout.
func New(opts Options) *slog.Logger {
	return NewWithWriter(os.Stdout, opts)
}

// NewWithWriter builds a slog.Logger writing to w. Any format other than
// "text" produces JSON.
func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.IncludeCaller,
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
