// Package logging builds the structured loggers used by the command line.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ahrav/go-verdict/internal/domain"
)

// Supported handler formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a level name (debug, info, warn, error) into a
// slog.Level, ignoring case.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, domain.NewArgumentError("log-level", name, "unknown log level")
	}
	return level, nil
}

// New returns a logger writing to w at level in the given format. If w is
// nil, os.Stderr is used.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, domain.NewArgumentError("log-format", format, "must be text or json")
	}
	return slog.New(handler), nil
}

// Component returns logger scoped to a named component.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("component", name))
}
