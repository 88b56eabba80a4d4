package knntune

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/knntune/distance"
)

// Logger wraps slog.Logger with knntune-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithMetric adds a distance metric field to the logger.
func (l *Logger) WithMetric(m distance.Metric) *Logger {
	return &Logger{
		Logger: l.Logger.With("metric", m.String()),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// LogLoad logs a sample load operation.
func (l *Logger) LogLoad(ctx context.Context, rows, rejected int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"rows", rows,
			"error", err,
		)
	} else if rejected > 0 {
		l.WarnContext(ctx, "load completed with rejected records",
			"rows", rows,
			"rejected", rejected,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"rows", rows,
		)
	}
}

// LogPartition logs a partition operation.
func (l *Logger) LogPartition(ctx context.Context, training, testing int) {
	l.InfoContext(ctx, "partition completed",
		"training", training,
		"testing", testing,
	)
}

// LogTune logs a grid-search run.
func (l *Logger) LogTune(ctx context.Context, trials, failed int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tune failed",
			"trials", trials,
			"error", err,
		)
	} else if failed > 0 {
		l.WarnContext(ctx, "tune completed with failed trials",
			"trials", trials,
			"failed", failed,
			"duration", duration,
		)
	} else {
		l.InfoContext(ctx, "tune completed",
			"trials", trials,
			"duration", duration,
		)
	}
}

// LogClassify logs a single classification.
func (l *Logger) LogClassify(ctx context.Context, k int, label string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "classify failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "classify completed",
			"k", k,
			"label", label,
		)
	}
}

// LogSnapshot logs a snapshot save operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
