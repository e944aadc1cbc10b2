package common

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, uuid.Nil, RunIDFromContext(ctx))

	id := uuid.New()
	assert.Equal(t, id, RunIDFromContext(WithRunID(ctx, id)))
}

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), LoggerFromContext(ctx))

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, l, LoggerFromContext(WithLogger(ctx, l)))
}
