package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of refdex.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, corpus *refdex.Corpus, query string) ([]refdex.RetrievedChunk, error)
}

func (r *Retriever) Retrieve(ctx context.Context, corpus *refdex.Corpus, query string) ([]refdex.RetrievedChunk, error) {
	return r.RetrieveFn(ctx, corpus, query)
}
