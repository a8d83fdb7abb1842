package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of refdex.Synthesizer.
type Synthesizer struct {
	SynthesizeFn func(ctx context.Context, query string, results []refdex.RetrievedChunk) (*refdex.Answer, error)
}

func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []refdex.RetrievedChunk) (*refdex.Answer, error) {
	return s.SynthesizeFn(ctx, query, results)
}
