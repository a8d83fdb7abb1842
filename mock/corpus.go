package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of refdex.CorpusService.
type CorpusService struct {
	CreateCorpusFn   func(ctx context.Context, corpus *refdex.Corpus) error
	FindCorpusByIDFn func(ctx context.Context, id string) (*refdex.Corpus, error)
	FindCorporaFn    func(ctx context.Context, filter refdex.CorpusFilter) ([]*refdex.Corpus, error)
	UpdateCorpusFn   func(ctx context.Context, id string, upd refdex.CorpusUpdate) (*refdex.Corpus, error)
	DeleteCorpusFn   func(ctx context.Context, id string) error
}

func (s *CorpusService) CreateCorpus(ctx context.Context, corpus *refdex.Corpus) error {
	return s.CreateCorpusFn(ctx, corpus)
}

func (s *CorpusService) FindCorpusByID(ctx context.Context, id string) (*refdex.Corpus, error) {
	return s.FindCorpusByIDFn(ctx, id)
}

func (s *CorpusService) FindCorpora(ctx context.Context, filter refdex.CorpusFilter) ([]*refdex.Corpus, error) {
	return s.FindCorporaFn(ctx, filter)
}

func (s *CorpusService) UpdateCorpus(ctx context.Context, id string, upd refdex.CorpusUpdate) (*refdex.Corpus, error) {
	return s.UpdateCorpusFn(ctx, id, upd)
}

func (s *CorpusService) DeleteCorpus(ctx context.Context, id string) error {
	return s.DeleteCorpusFn(ctx, id)
}
