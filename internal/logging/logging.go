// Package logging builds the structured logger shared by every fnspan
// component. Logs go to stderr so reports on stdout stay machine-readable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// RunIDKey is the attribute carrying the per-invocation identifier
const RunIDKey = "run_id"

// ParseLevel converts a configured level name into a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (supported: debug, info, warn, error)", name)
	}
}

// New returns a logger writing to w in the given format (text or json)
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (supported: text, json)", format)
	}
	return slog.New(handler), nil
}

// Setup builds a logger tagged with a fresh run id and installs it as the
// slog default. The run id is returned for callers that report it.
func Setup(w io.Writer, level, format string) (*slog.Logger, string, error) {
	logger, err := New(w, level, format)
	if err != nil {
		return nil, "", err
	}
	runID := uuid.NewString()
	logger = logger.With(slog.String(RunIDKey, runID))
	slog.SetDefault(logger)
	return logger, runID, nil
}

// Discard returns a logger that drops everything; used by tests and
// library callers that pass no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
