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

func TestLoggingEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("logs model, text count, and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Embedder{
			EmbedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{{0.1}, {0.2}}, nil
			},
			ModelFn: func() string { return "embed-1" },
		}

		embedder := refslog.NewLoggingEmbedder(inner, logger)
		vectors, err := embedder.Embed(context.Background(), []string{"point cloud", "voxel grid"})

		require.NoError(t, err)
		assert.Len(t, vectors, 2)
		output := buf.String()
		assert.Contains(t, output, "embed")
		assert.Contains(t, output, "model=embed-1")
		assert.Contains(t, output, "texts=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Embedder{
			EmbedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, refdex.Errorf(refdex.EUNAVAILABLE, "embedding service unavailable")
			},
			ModelFn: func() string { return "embed-1" },
		}

		embedder := refslog.NewLoggingEmbedder(inner, logger)
		_, err := embedder.Embed(context.Background(), []string{"point cloud"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "embedding service unavailable")
	})

	t.Run("delegates model and dimensions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Embedder{
			ModelFn:      func() string { return "embed-1" },
			DimensionsFn: func() int { return 768 },
		}

		embedder := refslog.NewLoggingEmbedder(inner, logger)
		assert.Equal(t, "embed-1", embedder.Model())
		assert.Equal(t, 768, embedder.Dimensions())
	})
}
