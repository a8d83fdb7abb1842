package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/mock"
	refslog "github.com/fwojciec/refdex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingVectorIndex_Query(t *testing.T) {
	t.Parallel()

	t.Run("logs collection, kind, and hit count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.VectorIndex{
			QueryFn: func(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error) {
				return []refdex.VectorHit{{ChunkID: "chunk-1", Score: 0.9}}, nil
			},
		}

		index := refslog.NewLoggingVectorIndex(inner, logger)
		hits, err := index.Query(context.Background(), "refdex_corpus-1", []float32{0.1}, refdex.VectorQuery{
			Model:    "embed-1",
			TextKind: refdex.TextKindQuestion,
			TopK:     5,
		})

		require.NoError(t, err)
		assert.Len(t, hits, 1)
		output := buf.String()
		assert.Contains(t, output, "vector query")
		assert.Contains(t, output, "collection=refdex_corpus-1")
		assert.Contains(t, output, "kind=question")
		assert.Contains(t, output, "top_k=5")
		assert.Contains(t, output, "hits=1")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.VectorIndex{
			QueryFn: func(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error) {
				return nil, refdex.Errorf(refdex.EUNAVAILABLE, "vector store unreachable")
			},
		}

		index := refslog.NewLoggingVectorIndex(inner, logger)
		_, err := index.Query(context.Background(), "refdex_corpus-1", []float32{0.1}, refdex.VectorQuery{Model: "embed-1"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "vector store unreachable")
	})
}

func TestLoggingVectorIndex_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("logs record count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.VectorIndex{
			UpsertFn: func(ctx context.Context, collection string, records []refdex.EmbeddingRecord) error {
				return nil
			},
		}

		index := refslog.NewLoggingVectorIndex(inner, logger)
		err := index.Upsert(context.Background(), "refdex_corpus-1", []refdex.EmbeddingRecord{
			{ChunkID: "chunk-1", Vector: []float32{0.1}, Model: "embed-1"},
			{ChunkID: "chunk-2", Vector: []float32{0.2}, Model: "embed-1"},
		})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "upsert")
		assert.Contains(t, output, "records=2")
	})
}

func TestLoggingVectorIndex_Collections(t *testing.T) {
	t.Parallel()

	t.Run("logs ensure and drop", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.VectorIndex{
			EnsureCollectionFn: func(ctx context.Context, collection string, dims int) error { return nil },
			DropCollectionFn:   func(ctx context.Context, collection string) error { return nil },
		}

		index := refslog.NewLoggingVectorIndex(inner, logger)
		require.NoError(t, index.EnsureCollection(context.Background(), "refdex_corpus-1", 768))
		require.NoError(t, index.DropCollection(context.Background(), "refdex_corpus-1"))

		output := buf.String()
		assert.Contains(t, output, "ensure collection")
		assert.Contains(t, output, "dims=768")
		assert.Contains(t, output, "drop collection")
	})
}
