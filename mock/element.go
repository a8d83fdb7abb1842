package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.ElementService = (*ElementService)(nil)

// ElementService is a mock implementation of refdex.ElementService.
type ElementService struct {
	CreateElementsFn         func(ctx context.Context, elements []*refdex.Element) error
	FindElementByIDFn        func(ctx context.Context, corpusID, id string) (*refdex.Element, error)
	FindElementsFn           func(ctx context.Context, filter refdex.ElementFilter) ([]*refdex.Element, error)
	AncestorsFn              func(ctx context.Context, corpusID, id string) ([]*refdex.Element, error)
	DeleteElementsByCorpusFn func(ctx context.Context, corpusID string) error
}

func (s *ElementService) CreateElements(ctx context.Context, elements []*refdex.Element) error {
	return s.CreateElementsFn(ctx, elements)
}

func (s *ElementService) FindElementByID(ctx context.Context, corpusID, id string) (*refdex.Element, error) {
	return s.FindElementByIDFn(ctx, corpusID, id)
}

func (s *ElementService) FindElements(ctx context.Context, filter refdex.ElementFilter) ([]*refdex.Element, error) {
	return s.FindElementsFn(ctx, filter)
}

func (s *ElementService) Ancestors(ctx context.Context, corpusID, id string) ([]*refdex.Element, error) {
	return s.AncestorsFn(ctx, corpusID, id)
}

func (s *ElementService) DeleteElementsByCorpus(ctx context.Context, corpusID string) error {
	return s.DeleteElementsByCorpusFn(ctx, corpusID)
}
