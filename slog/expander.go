package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
)

// Ensure LoggingExpander implements refdex.Expander.
var _ refdex.Expander = (*LoggingExpander)(nil)

// LoggingExpander wraps an Expander with debug logging.
type LoggingExpander struct {
	next   refdex.Expander
	logger *slog.Logger
}

// NewLoggingExpander creates a new LoggingExpander.
func NewLoggingExpander(next refdex.Expander, logger *slog.Logger) *LoggingExpander {
	return &LoggingExpander{next: next, logger: logger}
}

// Expand delegates to the wrapped expander and logs the operation.
func (e *LoggingExpander) Expand(ctx context.Context, query string) (probes []refdex.Probe, err error) {
	defer func(begin time.Time) {
		e.logger.Info("expand",
			"query", query,
			"probes", len(probes),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Expand(ctx, query)
}
