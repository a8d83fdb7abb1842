package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of refdex.ChunkService.
type ChunkService struct {
	CreateChunksFn         func(ctx context.Context, chunks []*refdex.Chunk) error
	FindChunkByIDFn        func(ctx context.Context, corpusID, id string) (*refdex.Chunk, error)
	FindChunksByIDsFn      func(ctx context.Context, corpusID string, ids []string) ([]*refdex.Chunk, error)
	FindChunksFn           func(ctx context.Context, filter refdex.ChunkFilter) ([]*refdex.Chunk, error)
	DeleteChunksByCorpusFn func(ctx context.Context, corpusID string) error
	EmbeddedHashFn         func(ctx context.Context, corpusID, chunkID, model string) (string, error)
	MarkEmbeddedFn         func(ctx context.Context, corpusID, chunkID, model, contentHash string) error
}

func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*refdex.Chunk) error {
	return s.CreateChunksFn(ctx, chunks)
}

func (s *ChunkService) FindChunkByID(ctx context.Context, corpusID, id string) (*refdex.Chunk, error) {
	return s.FindChunkByIDFn(ctx, corpusID, id)
}

func (s *ChunkService) FindChunksByIDs(ctx context.Context, corpusID string, ids []string) ([]*refdex.Chunk, error) {
	return s.FindChunksByIDsFn(ctx, corpusID, ids)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter refdex.ChunkFilter) ([]*refdex.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) DeleteChunksByCorpus(ctx context.Context, corpusID string) error {
	return s.DeleteChunksByCorpusFn(ctx, corpusID)
}

func (s *ChunkService) EmbeddedHash(ctx context.Context, corpusID, chunkID, model string) (string, error) {
	return s.EmbeddedHashFn(ctx, corpusID, chunkID, model)
}

func (s *ChunkService) MarkEmbedded(ctx context.Context, corpusID, chunkID, model, contentHash string) error {
	return s.MarkEmbeddedFn(ctx, corpusID, chunkID, model, contentHash)
}
