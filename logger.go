package optics

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with clustering-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000),
		})),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// WithParams adds the clustering parameters to the logger.
func (l *Logger) WithParams(p Params) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"max_distance", p.MaxDistance,
			"min_points", p.MinPoints,
			"xi", p.Xi,
		),
	}
}

// LogOrdering logs the reachability ordering phase.
func (l *Logger) LogOrdering(ctx context.Context, items int, stats Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ordering failed",
			"items", items,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "ordering completed",
			"items", items,
			"distance_calls", stats.DistanceCalls,
			"max_seed_pool", stats.MaxSeedPool,
			"duration", stats.OrderingDuration,
		)
	}
}

// LogExtraction logs the cluster extraction phase.
func (l *Logger) LogExtraction(ctx context.Context, clusters, noise int, duration time.Duration) {
	l.DebugContext(ctx, "extraction completed",
		"clusters", clusters,
		"noise", noise,
		"duration", duration,
	)
}

// LogRun logs a complete clustering run.
func (l *Logger) LogRun(ctx context.Context, items, clusters, noise int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cluster failed",
			"items", items,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cluster completed",
			"items", items,
			"clusters", clusters,
			"noise", noise,
			"duration", duration,
		)
	}
}

// LogBatch logs a batch of runs.
func (l *Logger) LogBatch(ctx context.Context, count, failed int, duration time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"count", count,
			"duration", duration,
		)
	}
}
