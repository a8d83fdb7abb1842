package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
)

// Ensure LoggingAsker implements refdex.Asker.
var _ refdex.Asker = (*LoggingAsker)(nil)

// LoggingAsker wraps an Asker with debug logging.
type LoggingAsker struct {
	next   refdex.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next refdex.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the operation.
func (a *LoggingAsker) Ask(ctx context.Context, corpus *refdex.Corpus, question string) (answer *refdex.Answer, err error) {
	defer func(begin time.Time) {
		citations := 0
		noDocs := false
		if answer != nil {
			citations = len(answer.Citations)
			noDocs = answer.NoDocumentation
		}
		a.logger.Info("ask",
			"corpus", corpus.Name,
			"question", question,
			"citations", citations,
			"no_documentation", noDocs,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, corpus, question)
}
