// Package logging wraps slog.Logger with solver specific fields so every
// component reports nodes, sizes and arena usage under the same keys.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with dcsolve-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// WithNode adds a node field to the logger.
func (l *Logger) WithNode(node int) *Logger {
	return &Logger{Logger: l.Logger.With("node", node)}
}

// WithCircuit tags every record with a circuit name.
func (l *Logger) WithCircuit(name string) *Logger {
	return &Logger{Logger: l.Logger.With("circuit", name)}
}

// LogAddDevice logs a netlist mutation.
func (l *Logger) LogAddDevice(ctx context.Context, kind string, a, b int, err error) {
	if err != nil {
		l.WarnContext(ctx, "add device rejected",
			"kind", kind,
			"node_a", a,
			"node_b", b,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "device added",
		"kind", kind,
		"node_a", a,
		"node_b", b,
	)
}

// LogSolve logs the outcome of one nodal-analysis solve.
func (l *Logger) LogSolve(ctx context.Context, size, skipped, scratch int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "solve failed",
			"size", size,
			"scratch_bytes", scratch,
			"error", err,
		)
	case skipped > 0:
		l.WarnContext(ctx, "solve skipped near-singular pivots",
			"size", size,
			"skipped", skipped,
			"scratch_bytes", scratch,
		)
	default:
		l.DebugContext(ctx, "solve completed",
			"size", size,
			"scratch_bytes", scratch,
		)
	}
}
