package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
)

// Ensure LoggingGenerator implements refdex.Generator.
var _ refdex.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with debug logging.
type LoggingGenerator struct {
	next   refdex.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next refdex.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs the operation.
func (g *LoggingGenerator) Generate(ctx context.Context, req refdex.GenerateRequest) (texts []string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"prompt_bytes", len(req.Prompt),
			"completions", len(texts),
			"temperature", req.Temperature,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, req)
}
