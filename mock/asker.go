package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.Asker = (*Asker)(nil)

// Asker is a mock implementation of refdex.Asker.
type Asker struct {
	AskFn func(ctx context.Context, corpus *refdex.Corpus, question string) (*refdex.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, corpus *refdex.Corpus, question string) (*refdex.Answer, error) {
	return a.AskFn(ctx, corpus, question)
}
