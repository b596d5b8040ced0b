package utils

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace is below Debug and is used for per-row tracing.
const LevelTrace slog.Level = -8

// Module names attached to loggers as the "mod" attribute.
const (
	ExecutorModule = "executor"
	TraceModule    = "trace"
	VerifierModule = "verifier"
)

// ParseLevel converts a textual level into an slog level
func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// NewLogger builds a text logger writing to w at the given level
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ModuleLogger tags a logger with a module name, falling back to slog.Default for nil
func ModuleLogger(l *slog.Logger, module string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("mod", module)
}
