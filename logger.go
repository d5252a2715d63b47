package geoh3index

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with geoh3index-specific context.
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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithResolution adds the build resolution field to the logger.
func (l *Logger) WithResolution(r int) *Logger {
	return &Logger{Logger: l.Logger.With("resolution", r)}
}

// LogBuildSkip logs a row that was treated as null at build time because
// its WKB failed to parse. Unsupported geometry types abort Build instead
// and are not logged here.
func (l *Logger) LogBuildSkip(ctx context.Context, offset uint32, err error) {
	l.WarnContext(ctx, "row treated as null, WKB decode failed",
		"offset", offset,
		"error", err,
	)
}

// LogProbeSkip logs a query geometry that was skipped during a probe.
func (l *Logger) LogProbeSkip(ctx context.Context, queryIdx int, err error) {
	l.WarnContext(ctx, "query skipped, WKB decode failed",
		"query_index", queryIdx,
		"error", err,
	)
}

// LogBuildCompleted logs the completion of Build.
func (l *Logger) LogBuildCompleted(ctx context.Context, numRows int, cardinality int, numNull int) {
	l.InfoContext(ctx, "build completed",
		"num_rows", numRows,
		"cardinality", cardinality,
		"num_null", numNull,
	)
}

// LogUpload logs the completion of Upload.
func (l *Logger) LogUpload(ctx context.Context, pathsToSize map[string]int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upload failed", "error", err)
		return
	}
	var total int64
	for _, size := range pathsToSize {
		total += size
	}
	l.InfoContext(ctx, "upload completed",
		"num_files", len(pathsToSize),
		"total_bytes", total,
	)
}

// LogLoad logs the completion of Load.
func (l *Logger) LogLoad(ctx context.Context, numRows int, cardinality int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed", "error", err)
		return
	}
	l.InfoContext(ctx, "load completed",
		"num_rows", numRows,
		"cardinality", cardinality,
	)
}
