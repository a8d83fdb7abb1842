package refdex

import (
	"context"
)

// Granularity is the decomposition level of a chunk.
type Granularity string

// Chunk granularities from coarse subtree summaries down to single-element
// chunks. The default chunker emits coarse and fine; medium sits between
// them for chunkers that add an intermediate level.
const (
	GranularityCoarse Granularity = "coarse"
	GranularityMedium Granularity = "medium"
	GranularityFine   Granularity = "fine"
)

// Valid returns true if g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityCoarse, GranularityMedium, GranularityFine:
		return true
	}
	return false
}

// Rank orders granularities for tie-breaking; finer is higher.
func (g Granularity) Rank() int {
	switch g {
	case GranularityFine:
		return 2
	case GranularityMedium:
		return 1
	default:
		return 0
	}
}

// Chunk is a retrievable unit derived from one or more elements at a given
// granularity.
type Chunk struct {
	ID       string `json:"id"`
	CorpusID string `json:"corpusId"` // Denormalized for efficient filtering

	// ElementID is the element the chunk was built for: the subtree root
	// for coarse chunks, the leaf element for fine chunks.
	ElementID string `json:"elementId"`

	// ParentChunkID links a fine chunk to the coarse chunk covering its
	// element, enabling context expansion without re-scanning the tree.
	// Empty for coarse chunks.
	ParentChunkID string `json:"parentChunkId,omitempty"`

	Granularity Granularity `json:"granularity"`
	Title       string      `json:"title"`
	Text        string      `json:"text"`
	TokenCount  int         `json:"tokenCount"`

	// SourceElementIDs lists every element whose text contributed to the
	// chunk, in tree order.
	SourceElementIDs []string `json:"sourceElementIds"`

	SourceURL   string `json:"sourceUrl,omitempty"`
	Language    string `json:"language,omitempty"`
	ContentHash string `json:"contentHash,omitempty"`
	Position    int    `json:"position"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.CorpusID == "" {
		return Errorf(EINVALID, "chunk corpus ID required")
	}
	if c.ElementID == "" {
		return Errorf(EINVALID, "chunk element ID required")
	}
	if !c.Granularity.Valid() {
		return Errorf(EINVALID, "chunk %q has unknown granularity %q", c.ID, c.Granularity)
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk %q text required", c.ID)
	}
	if len(c.SourceElementIDs) == 0 {
		return Errorf(EINVALID, "chunk %q source element IDs required", c.ID)
	}
	return nil
}

// ChunkService represents a service for managing persisted chunks.
// Chunk IDs derive from element IDs and are unique only within a corpus,
// so reads are corpus-scoped.
type ChunkService interface {
	// CreateChunks stores a batch of chunks.
	CreateChunks(ctx context.Context, chunks []*Chunk) error

	// FindChunkByID retrieves a chunk by corpus and ID.
	// Returns ENOTFOUND if the chunk does not exist.
	FindChunkByID(ctx context.Context, corpusID, id string) (*Chunk, error)

	// FindChunksByIDs retrieves chunks by ID, preserving the requested
	// order. IDs with no stored chunk are skipped.
	FindChunksByIDs(ctx context.Context, corpusID string, ids []string) ([]*Chunk, error)

	// FindChunks retrieves chunks matching the filter.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// DeleteChunksByCorpus removes all chunks for a corpus.
	DeleteChunksByCorpus(ctx context.Context, corpusID string) error

	// EmbeddedHash returns the content hash recorded when the chunk was
	// last embedded under the given model, or "" if it never was. The
	// record survives re-chunking so unchanged chunks skip re-embedding.
	EmbeddedHash(ctx context.Context, corpusID, chunkID, model string) (string, error)

	// MarkEmbedded records that the chunk's current content hash has been
	// embedded under the given model.
	MarkEmbedded(ctx context.Context, corpusID, chunkID, model, contentHash string) error
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	ID          *string      `json:"id"`
	CorpusID    *string      `json:"corpusId"`
	ElementID   *string      `json:"elementId"`
	Granularity *Granularity `json:"granularity"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RetrievedChunk is one ranked retrieval output: the chunk, its attached
// ancestor context, and the fused relevance score.
type RetrievedChunk struct {
	Chunk     *Chunk   `json:"chunk"`
	Ancestors []*Chunk `json:"ancestors,omitempty"`
	Score     float32  `json:"score"`
}

// Retriever finds the chunks most relevant to a query within a corpus.
type Retriever interface {
	// Retrieve expands the query into probes, searches the corpus index,
	// and returns fused results ordered by descending score.
	// Returns EUNAVAILABLE if the vector store cannot be reached.
	Retrieve(ctx context.Context, corpus *Corpus, query string) ([]RetrievedChunk, error)
}
