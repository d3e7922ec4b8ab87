package ordex

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ordex-specific helpers.
// Field names are consistent across all operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
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

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithIndex tags every record with the index name.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogPut logs a put operation.
func (l *Logger) LogPut(ctx context.Context, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed",
			"size", size,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "put completed", "size", size)
}

// LogRemove logs a remove operation. removed is false for no-op removals.
func (l *Logger) LogRemove(ctx context.Context, size int, removed bool) {
	l.DebugContext(ctx, "remove completed",
		"size", size,
		"removed", removed,
	)
}

// LogBulkLoad logs a bulk load.
func (l *Logger) LogBulkLoad(ctx context.Context, count, keys int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bulk load failed",
			"count", count,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "bulk load completed",
		"count", count,
		"keys", keys,
	)
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, skip, limit, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"skip", skip,
			"limit", limit,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"skip", skip,
		"limit", limit,
		"results", results,
	)
}
