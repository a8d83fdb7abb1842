package refdex

import "context"

// TextKind distinguishes what kind of text a stored vector embeds.
type TextKind string

// Vector text kinds. Content vectors embed the chunk text itself; question
// vectors embed hypothetical questions generated for the chunk and carry
// the owning chunk's ID.
const (
	TextKindContent  TextKind = "content"
	TextKindQuestion TextKind = "question"
)

// EmbeddingRecord pairs a chunk with one embedding vector and the model
// that produced it. Ordinal distinguishes multiple vectors of the same
// kind for one chunk (several hypothetical questions); content vectors
// use ordinal 0.
type EmbeddingRecord struct {
	ChunkID     string      `json:"chunkId"`
	CorpusID    string      `json:"corpusId"`
	Vector      []float32   `json:"vector"`
	Model       string      `json:"model"`
	TextKind    TextKind    `json:"textKind"`
	Ordinal     int         `json:"ordinal"`
	Granularity Granularity `json:"granularity"`
	Language    string      `json:"language,omitempty"`
	ContentHash string      `json:"contentHash,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *EmbeddingRecord) Validate() error {
	if r.ChunkID == "" {
		return Errorf(EINVALID, "embedding record chunk ID required")
	}
	if len(r.Vector) == 0 {
		return Errorf(EINVALID, "embedding record for %q has empty vector", r.ChunkID)
	}
	if r.Model == "" {
		return Errorf(EINVALID, "embedding record for %q model required", r.ChunkID)
	}
	return nil
}

// VectorQuery configures a nearest-neighbor search.
type VectorQuery struct {
	// Model restricts hits to vectors embedded under this model.
	// Required: vectors from different models are never compared.
	Model string `json:"model"`

	// TextKind selects content or question vectors. Empty means content.
	TextKind TextKind `json:"textKind,omitempty"`

	// Granularity restricts hits to one granularity. Empty means any.
	Granularity Granularity `json:"granularity,omitempty"`

	// Languages restricts hits to chunks in these language tags.
	Languages []string `json:"languages,omitempty"`

	// TopK is the maximum number of hits to return.
	TopK int `json:"topK"`

	// MinScore drops hits scoring below this cosine similarity.
	MinScore float32 `json:"minScore,omitempty"`
}

// VectorHit is one nearest-neighbor match. Score is cosine similarity.
// For question vectors, ChunkID is the owning chunk, not the question.
type VectorHit struct {
	ChunkID string  `json:"chunkId"`
	Score   float32 `json:"score"`
}

// CollectionName returns the vector store collection holding a corpus's
// embeddings. One collection per corpus; the corpus pins the embedding
// model, so all vectors in a collection share one dimensionality.
func CollectionName(corpusID string) string {
	return "refdex_" + corpusID
}

// VectorIndex adapts an external vector similarity store. Scores are cosine
// similarity in [-1, 1]. Store failures (connection loss, timeouts) are
// reported as EUNAVAILABLE; callers decide whether to retry.
type VectorIndex interface {
	// EnsureCollection creates the named collection for vectors of the
	// given dimension if it does not exist yet.
	EnsureCollection(ctx context.Context, collection string, dims int) error

	// DropCollection removes the named collection and all its vectors.
	DropCollection(ctx context.Context, collection string) error

	// Upsert inserts or replaces embedding records. Safe for concurrent
	// use; each record is written atomically.
	Upsert(ctx context.Context, collection string, records []EmbeddingRecord) error

	// Query returns the nearest neighbors of the vector, best first,
	// restricted by the query's model and filters.
	Query(ctx context.Context, collection string, vector []float32, q VectorQuery) ([]VectorHit, error)
}
