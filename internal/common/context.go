package common

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyLogger contextKey = "logger"
)

// WithRunID adds a report run ID to the context
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, id)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ContextKeyRunID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithLogger stores a logger in the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

// LoggerFromContext returns the context logger, or slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ContextKeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
