package logger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdalton/taskwell-api/internal/platform/logger"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns stored logger", func(t *testing.T) {
		t.Parallel()

		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := logger.WithLogger(context.Background(), stored)

		assert.Same(t, stored, logger.FromContext(ctx))
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		t.Parallel()

		assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
	})
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	stored := slog.New(slog.NewTextHandler(io.Discard, nil))
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("prefers context logger", func(t *testing.T) {
		t.Parallel()

		ctx := logger.WithLogger(context.Background(), stored)
		assert.Same(t, stored, logger.FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses provided fallback", func(t *testing.T) {
		t.Parallel()

		got := logger.FromContextOrDefault(context.Background(), fallback)
		assert.Same(t, fallback, got)
	})

	t.Run("nil fallback uses process default", func(t *testing.T) {
		t.Parallel()

		got := logger.FromContextOrDefault(context.Background(), nil)
		assert.Same(t, slog.Default(), got)
	})
}
