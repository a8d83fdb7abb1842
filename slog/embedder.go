// Package slog provides logging decorators for refdex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
)

// Ensure LoggingEmbedder implements refdex.Embedder.
var _ refdex.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   refdex.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next refdex.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Info("embed",
			"model", e.next.Model(),
			"texts", len(texts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// Model delegates to the wrapped embedder.
func (e *LoggingEmbedder) Model() string {
	return e.next.Model()
}

// Dimensions delegates to the wrapped embedder.
func (e *LoggingEmbedder) Dimensions() int {
	return e.next.Dimensions()
}
