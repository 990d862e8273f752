// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level slog.LevelVar

// Init installs a slog default logger writing to w (stdout when nil).
// format is "json" or "text"; anything else falls back to text.
func Init(w io.Writer, format, lvl string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	SetLevel(lvl)

	opts := &slog.HandlerOptions{Level: &level}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// SetLevel changes the level of the installed logger at runtime.
func SetLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}
