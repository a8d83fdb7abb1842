package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/refdex"
)

// Ensure LoggingVectorIndex implements refdex.VectorIndex.
var _ refdex.VectorIndex = (*LoggingVectorIndex)(nil)

// LoggingVectorIndex wraps a VectorIndex with debug logging.
type LoggingVectorIndex struct {
	next   refdex.VectorIndex
	logger *slog.Logger
}

// NewLoggingVectorIndex creates a new LoggingVectorIndex.
func NewLoggingVectorIndex(next refdex.VectorIndex, logger *slog.Logger) *LoggingVectorIndex {
	return &LoggingVectorIndex{next: next, logger: logger}
}

// EnsureCollection delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) EnsureCollection(ctx context.Context, collection string, dims int) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("ensure collection",
			"collection", collection,
			"dims", dims,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.EnsureCollection(ctx, collection, dims)
}

// DropCollection delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) DropCollection(ctx context.Context, collection string) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("drop collection",
			"collection", collection,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.DropCollection(ctx, collection)
}

// Upsert delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) Upsert(ctx context.Context, collection string, records []refdex.EmbeddingRecord) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("upsert",
			"collection", collection,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Upsert(ctx, collection, records)
}

// Query delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) Query(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) (hits []refdex.VectorHit, err error) {
	defer func(begin time.Time) {
		i.logger.Info("vector query",
			"collection", collection,
			"kind", string(q.TextKind),
			"top_k", q.TopK,
			"hits", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Query(ctx, collection, vector, q)
}
