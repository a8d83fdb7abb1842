package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of refdex.VectorIndex.
type VectorIndex struct {
	EnsureCollectionFn func(ctx context.Context, collection string, dims int) error
	DropCollectionFn   func(ctx context.Context, collection string) error
	UpsertFn           func(ctx context.Context, collection string, records []refdex.EmbeddingRecord) error
	QueryFn            func(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error)
}

func (i *VectorIndex) EnsureCollection(ctx context.Context, collection string, dims int) error {
	return i.EnsureCollectionFn(ctx, collection, dims)
}

func (i *VectorIndex) DropCollection(ctx context.Context, collection string) error {
	return i.DropCollectionFn(ctx, collection)
}

func (i *VectorIndex) Upsert(ctx context.Context, collection string, records []refdex.EmbeddingRecord) error {
	return i.UpsertFn(ctx, collection, records)
}

func (i *VectorIndex) Query(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error) {
	return i.QueryFn(ctx, collection, vector, q)
}
