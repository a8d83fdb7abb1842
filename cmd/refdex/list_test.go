package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/refdex"
	main "github.com/fwojciec/refdex/cmd/refdex"
	"github.com/fwojciec/refdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists corpora with counts and URL", func(t *testing.T) {
		t.Parallel()

		corpora := &mock.CorpusService{
			FindCorporaFn: func(_ context.Context, _ refdex.CorpusFilter) ([]*refdex.Corpus, error) {
				return []*refdex.Corpus{
					{
						ID:        "corpus-123",
						Name:      "pcl",
						SourceURL: "https://docs.example.org/pcl",
						Model:     "embed-1",
						CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
					},
					{
						ID:        "corpus-456",
						Name:      "eigen",
						SourceURL: "https://docs.example.org/eigen",
						Model:     "embed-1",
						CreatedAt: time.Date(2026, 1, 16, 11, 0, 0, 0, time.UTC),
					},
				}, nil
			},
		}
		elements := &mock.ElementService{
			FindElementsFn: func(_ context.Context, filter refdex.ElementFilter) ([]*refdex.Element, error) {
				if *filter.CorpusID == "corpus-123" {
					return []*refdex.Element{{ID: "PointCloud"}, {ID: "PointCloud::PointXYZ"}}, nil
				}
				return []*refdex.Element{{ID: "Matrix"}}, nil
			},
		}
		chunks := &mock.ChunkService{
			FindChunksFn: func(_ context.Context, filter refdex.ChunkFilter) ([]*refdex.Chunk, error) {
				if *filter.CorpusID == "corpus-123" {
					return []*refdex.Chunk{{ID: "PointCloud#coarse.0"}}, nil
				}
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Corpora:  corpora,
			Elements: elements,
			Chunks:   chunks,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "corpus-123")
		assert.Contains(t, output, "pcl  2 elements  1 chunks")
		assert.Contains(t, output, "https://docs.example.org/pcl")
		assert.Contains(t, output, "corpus-456")
		assert.Contains(t, output, "eigen  1 elements  0 chunks")
	})

	t.Run("shows helpful message when no corpora exist", func(t *testing.T) {
		t.Parallel()

		corpora := &mock.CorpusService{
			FindCorporaFn: func(_ context.Context, _ refdex.CorpusFilter) ([]*refdex.Corpus, error) {
				return []*refdex.Corpus{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Corpora: corpora,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No corpora")
	})

	t.Run("returns error when FindCorpora fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")

		corpora := &mock.CorpusService{
			FindCorporaFn: func(_ context.Context, _ refdex.CorpusFilter) ([]*refdex.Corpus, error) {
				return nil, dbErr
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Corpora: corpora,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, dbErr, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
