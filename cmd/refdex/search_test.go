package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/refdex"
	main "github.com/fwojciec/refdex/cmd/refdex"
	"github.com/fwojciec/refdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	corpora := &mock.CorpusService{
		FindCorporaFn: func(_ context.Context, filter refdex.CorpusFilter) ([]*refdex.Corpus, error) {
			if filter.Name != nil && *filter.Name == "pcl" {
				return []*refdex.Corpus{{ID: "corpus-123", Name: "pcl", Model: "embed-1"}}, nil
			}
			return nil, nil
		},
	}

	t.Run("prints ranked results with scores and breadcrumbs", func(t *testing.T) {
		t.Parallel()

		retriever := &mock.Retriever{
			RetrieveFn: func(_ context.Context, corpus *refdex.Corpus, query string) ([]refdex.RetrievedChunk, error) {
				return []refdex.RetrievedChunk{
					{
						Chunk: &refdex.Chunk{
							ID:        "PointCloud::PointXYZ::getVector3fMap()#fine.0",
							Title:     "getVector3fMap()",
							SourceURL: "https://docs.example.org/pcl/point_xyz.html",
						},
						Ancestors: []*refdex.Chunk{
							{ID: "PointCloud::PointXYZ#coarse.0", Title: "PointXYZ"},
						},
						Score: 0.87,
					},
					{
						Chunk: &refdex.Chunk{
							ID:    "PointCloud#coarse.0",
							Title: "PointCloud",
						},
						Score: 0.61,
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Corpora:   corpora,
			Retriever: retriever,
		}

		cmd := &main.SearchCmd{Name: "pcl", Query: "eigen map"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "1. 0.87  PointXYZ > getVector3fMap()")
		assert.Contains(t, output, "https://docs.example.org/pcl/point_xyz.html")
		assert.Contains(t, output, "2. 0.61  PointCloud")
	})

	t.Run("prints no results message for empty retrieval", func(t *testing.T) {
		t.Parallel()

		retriever := &mock.Retriever{
			RetrieveFn: func(_ context.Context, _ *refdex.Corpus, _ string) ([]refdex.RetrievedChunk, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Corpora:   corpora,
			Retriever: retriever,
		}

		cmd := &main.SearchCmd{Name: "pcl", Query: "nothing matches this"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No results.")
	})

	t.Run("returns ENOTFOUND for unknown corpus", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Corpora: corpora,
		}

		cmd := &main.SearchCmd{Name: "missing", Query: "anything"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, refdex.ENOTFOUND, refdex.ErrorCode(err))
	})

	t.Run("returns error when retrieval fails", func(t *testing.T) {
		t.Parallel()

		retriever := &mock.Retriever{
			RetrieveFn: func(_ context.Context, _ *refdex.Corpus, _ string) ([]refdex.RetrievedChunk, error) {
				return nil, refdex.Errorf(refdex.EUNAVAILABLE, "vector store unreachable")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Corpora:   corpora,
			Retriever: retriever,
		}

		cmd := &main.SearchCmd{Name: "pcl", Query: "anything"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "vector store unreachable")
	})
}
