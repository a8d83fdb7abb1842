// Package qdrant implements the vector index over a Qdrant server.
package qdrant

import (
	"context"
	"fmt"

	"github.com/fwojciec/refdex"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Ensure Index implements refdex.VectorIndex at compile time.
var _ refdex.VectorIndex = (*Index)(nil)

// DefaultAddr is the default Qdrant gRPC address.
const DefaultAddr = "localhost:6334"

// defaultTopK bounds queries that do not set a limit.
const defaultTopK = 10

// Index stores and searches embedding vectors in Qdrant collections.
// Collections use cosine distance; every point carries its chunk ID,
// model, and filter attributes as payload. Safe for concurrent use.
type Index struct {
	client *qdrant.Client
}

// NewIndex connects to a Qdrant server at host:port (gRPC).
func NewIndex(host string, port int, apiKey string) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, refdex.Errorf(refdex.EUNAVAILABLE, "connect to qdrant: %v", err)
	}
	return &Index{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet.
func (i *Index) EnsureCollection(ctx context.Context, collection string, dims int) error {
	if dims <= 0 {
		return refdex.Errorf(refdex.EINVALID, "collection %q needs a positive dimension", collection)
	}

	exists, err := i.client.CollectionExists(ctx, collection)
	if err != nil {
		return unavailable(err)
	}
	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// DropCollection removes the collection. Dropping a collection that does
// not exist is not an error.
func (i *Index) DropCollection(ctx context.Context, collection string) error {
	exists, err := i.client.CollectionExists(ctx, collection)
	if err != nil {
		return unavailable(err)
	}
	if !exists {
		return nil
	}
	if err := i.client.DeleteCollection(ctx, collection); err != nil {
		return unavailable(err)
	}
	return nil
}

// Upsert writes embedding records as points. Point IDs derive
// deterministically from (chunk ID, text kind, ordinal), so re-embedding a
// chunk replaces its previous vectors instead of accumulating duplicates.
func (i *Index) Upsert(ctx context.Context, collection string, records []refdex.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for idx := range records {
		record := &records[idx]
		if err := record.Validate(); err != nil {
			return err
		}

		kind := record.TextKind
		if kind == "" {
			kind = refdex.TextKindContent
		}

		payload := map[string]any{
			"chunk_id":  record.ChunkID,
			"corpus_id": record.CorpusID,
			"model":     record.Model,
			"text_kind": string(kind),
			"ordinal":   int64(record.Ordinal),
		}
		if record.Granularity != "" {
			payload["granularity"] = string(record.Granularity)
		}
		if record.Language != "" {
			payload["language"] = record.Language
		}
		if record.ContentHash != "" {
			payload["content_hash"] = record.ContentHash
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(record.ChunkID, kind, record.Ordinal)),
			Vectors: qdrant.NewVectors(record.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Query searches the collection for the vector's nearest neighbors,
// restricted to the query's model so vectors from different models are
// never compared.
func (i *Index) Query(ctx context.Context, collection string, vector []float32, q refdex.VectorQuery) ([]refdex.VectorHit, error) {
	if q.Model == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "vector query requires a model")
	}
	if len(vector) == 0 {
		return nil, refdex.Errorf(refdex.EINVALID, "vector query requires a vector")
	}

	kind := q.TextKind
	if kind == "" {
		kind = refdex.TextKindContent
	}

	must := []*qdrant.Condition{
		qdrant.NewMatch("model", q.Model),
		qdrant.NewMatch("text_kind", string(kind)),
	}
	if q.Granularity != "" {
		must = append(must, qdrant.NewMatch("granularity", string(q.Granularity)))
	}
	if len(q.Languages) > 0 {
		must = append(must, qdrant.NewMatchKeywords("language", q.Languages...))
	}

	limit := q.TopK
	if limit <= 0 {
		limit = defaultTopK
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         &qdrant.Filter{Must: must},
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if q.MinScore > 0 {
		query.ScoreThreshold = qdrant.PtrOf(q.MinScore)
	}

	points, err := i.client.Query(ctx, query)
	if err != nil {
		return nil, unavailable(err)
	}

	hits := make([]refdex.VectorHit, 0, len(points))
	for _, point := range points {
		chunkID := point.Payload["chunk_id"].GetStringValue()
		if chunkID == "" {
			continue
		}
		hits = append(hits, refdex.VectorHit{
			ChunkID: chunkID,
			Score:   point.Score,
		})
	}
	return hits, nil
}

// pointID derives the stable point UUID for one vector of a chunk.
func pointID(chunkID string, kind refdex.TextKind, ordinal int) string {
	name := fmt.Sprintf("%s|%s|%d", chunkID, kind, ordinal)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// unavailable wraps a store error in the domain unavailability code.
func unavailable(err error) error {
	return refdex.Errorf(refdex.EUNAVAILABLE, "qdrant: %v", err)
}
