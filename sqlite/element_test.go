package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCorpus(t *testing.T, db *sqlite.DB, name string) *refdex.Corpus {
	t.Helper()
	svc := sqlite.NewCorpusService(db)
	corpus := &refdex.Corpus{
		Name:      name,
		SourceURL: "https://docs.example.org/" + name,
		Model:     "embed-1",
	}
	require.NoError(t, svc.CreateCorpus(context.Background(), corpus))
	return corpus
}

// testTree returns a three-level module/class/member hierarchy for corpusID.
func testTree(corpusID string) []*refdex.Element {
	return []*refdex.Element{
		{
			ID:       "PointCloud",
			CorpusID: corpusID,
			Kind:     refdex.KindModule,
			Title:    "PointCloud",
			Text:     "Point cloud containers.",
			Position: 0,
		},
		{
			ID:       "PointCloud::PointXYZ",
			CorpusID: corpusID,
			Kind:     refdex.KindClass,
			Title:    "PointCloud::PointXYZ",
			Text:     "A point structure with x, y, and z coordinates.",
			ParentID: "PointCloud",
			Position: 1,
		},
		{
			ID:       "PointCloud::PointXYZ::getVector3fMap()",
			CorpusID: corpusID,
			Kind:     refdex.KindMember,
			Title:    "getVector3fMap()",
			Text:     "Returns an Eigen map over the coordinates.",
			ParentID: "PointCloud::PointXYZ",
			Position: 2,
		},
	}
}

func TestElementService_CreateElements(t *testing.T) {
	t.Parallel()

	t.Run("stores a batch of elements", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		elements, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &corpus.ID})
		require.NoError(t, err)
		assert.Len(t, elements, 3)
	})

	t.Run("returns error for invalid element", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		err := svc.CreateElements(ctx, []*refdex.Element{{}}) // missing required fields
		require.Error(t, err)
		assert.Equal(t, refdex.EINVALID, refdex.ErrorCode(err))
	})

	t.Run("allows the same element ID in different corpora", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		c1 := createTestCorpus(t, db, "pcl-1.14")
		c2 := createTestCorpus(t, db, "pcl-1.15")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(c1.ID)))
		require.NoError(t, svc.CreateElements(ctx, testTree(c2.ID)))

		found, err := svc.FindElementByID(ctx, c2.ID, "PointCloud")
		require.NoError(t, err)
		assert.Equal(t, c2.ID, found.CorpusID)
	})
}

func TestElementService_FindElementByID(t *testing.T) {
	t.Parallel()

	t.Run("returns element when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		el := &refdex.Element{
			ID:        "PointCloud::PointXYZ",
			CorpusID:  corpus.ID,
			Kind:      refdex.KindClass,
			Title:     "PointCloud::PointXYZ",
			Text:      "A point structure with x, y, and z coordinates.",
			Language:  "en",
			SourceURL: "https://docs.example.org/point_xyz.html",
			Position:  4,
		}
		require.NoError(t, svc.CreateElements(ctx, []*refdex.Element{el}))

		found, err := svc.FindElementByID(ctx, corpus.ID, el.ID)
		require.NoError(t, err)
		assert.Equal(t, el.ID, found.ID)
		assert.Equal(t, el.CorpusID, found.CorpusID)
		assert.Equal(t, el.Kind, found.Kind)
		assert.Equal(t, el.Title, found.Title)
		assert.Equal(t, el.Text, found.Text)
		assert.Equal(t, el.Language, found.Language)
		assert.Equal(t, el.SourceURL, found.SourceURL)
		assert.Equal(t, el.Position, found.Position)
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		_, err := svc.FindElementByID(ctx, corpus.ID, "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, refdex.ENOTFOUND, refdex.ErrorCode(err))
	})

	t.Run("scopes lookups by corpus", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		c1 := createTestCorpus(t, db, "pcl-1.14")
		c2 := createTestCorpus(t, db, "pcl-1.15")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(c1.ID)))

		_, err := svc.FindElementByID(ctx, c2.ID, "PointCloud")
		require.Error(t, err)
		assert.Equal(t, refdex.ENOTFOUND, refdex.ErrorCode(err))
	})
}

func TestElementService_FindElements(t *testing.T) {
	t.Parallel()

	t.Run("filters by kind", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		kind := refdex.KindMember
		elements, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &corpus.ID, Kind: &kind})
		require.NoError(t, err)
		require.Len(t, elements, 1)
		assert.Equal(t, "getVector3fMap()", elements[0].Title)
	})

	t.Run("filters by parent ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		parent := "PointCloud"
		elements, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &corpus.ID, ParentID: &parent})
		require.NoError(t, err)
		require.Len(t, elements, 1)
		assert.Equal(t, "PointCloud::PointXYZ", elements[0].ID)
	})

	t.Run("returns elements in insertion order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		elements, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &corpus.ID})
		require.NoError(t, err)
		require.Len(t, elements, 3)
		assert.Equal(t, "PointCloud", elements[0].ID)
		assert.Equal(t, "PointCloud::PointXYZ", elements[1].ID)
		assert.Equal(t, "PointCloud::PointXYZ::getVector3fMap()", elements[2].ID)
	})

	t.Run("respects limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		var elements []*refdex.Element
		for i := 0; i < 5; i++ {
			elements = append(elements, &refdex.Element{
				ID:       fmt.Sprintf("module%d", i),
				CorpusID: corpus.ID,
				Kind:     refdex.KindModule,
				Title:    fmt.Sprintf("Module %d", i),
				Position: i,
			})
		}
		require.NoError(t, svc.CreateElements(ctx, elements))

		page, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &corpus.ID, Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "module1", page[0].ID)
	})
}

func TestElementService_Ancestors(t *testing.T) {
	t.Parallel()

	t.Run("returns chain from parent to root", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		ancestors, err := svc.Ancestors(ctx, corpus.ID, "PointCloud::PointXYZ::getVector3fMap()")
		require.NoError(t, err)
		require.Len(t, ancestors, 2)
		assert.Equal(t, "PointCloud::PointXYZ", ancestors[0].ID)
		assert.Equal(t, "PointCloud", ancestors[1].ID)
	})

	t.Run("returns empty chain for a root element", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(corpus.ID)))

		ancestors, err := svc.Ancestors(ctx, corpus.ID, "PointCloud")
		require.NoError(t, err)
		assert.Empty(t, ancestors)
	})

	t.Run("returns ENOTFOUND for missing element", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		_, err := svc.Ancestors(ctx, corpus.ID, "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, refdex.ENOTFOUND, refdex.ErrorCode(err))
	})

	t.Run("stops at a missing parent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		corpus := createTestCorpus(t, db, "pcl")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, []*refdex.Element{{
			ID:       "orphaned-class",
			CorpusID: corpus.ID,
			Kind:     refdex.KindClass,
			Title:    "OrphanedClass",
			ParentID: "never-stored",
		}}))

		ancestors, err := svc.Ancestors(ctx, corpus.ID, "orphaned-class")
		require.NoError(t, err)
		assert.Empty(t, ancestors)
	})
}

func TestElementService_DeleteElementsByCorpus(t *testing.T) {
	t.Parallel()

	t.Run("deletes only the corpus elements", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		c1 := createTestCorpus(t, db, "pcl-1.14")
		c2 := createTestCorpus(t, db, "pcl-1.15")
		svc := sqlite.NewElementService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateElements(ctx, testTree(c1.ID)))
		require.NoError(t, svc.CreateElements(ctx, testTree(c2.ID)))

		require.NoError(t, svc.DeleteElementsByCorpus(ctx, c1.ID))

		elements, err := svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &c1.ID})
		require.NoError(t, err)
		assert.Empty(t, elements)

		elements, err = svc.FindElements(ctx, refdex.ElementFilter{CorpusID: &c2.ID})
		require.NoError(t, err)
		assert.Len(t, elements, 3)
	})
}
