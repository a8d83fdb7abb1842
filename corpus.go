package refdex

import (
	"context"
	"time"
)

// Corpus represents one documentation set to be indexed and queried.
// Model pins the embedding model its vector index was built with; queries
// must embed probes with the same model.
type Corpus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SourceURL string    `json:"sourceUrl"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the corpus contains invalid fields.
func (c *Corpus) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "corpus name required")
	}
	if c.Model == "" {
		return Errorf(EINVALID, "corpus embedding model required")
	}
	return nil
}

// CorpusService represents a service for managing corpora.
type CorpusService interface {
	// CreateCorpus creates a new corpus.
	// Returns ECONFLICT if the name is already taken.
	CreateCorpus(ctx context.Context, corpus *Corpus) error

	// FindCorpusByID retrieves a corpus by ID.
	// Returns ENOTFOUND if the corpus does not exist.
	FindCorpusByID(ctx context.Context, id string) (*Corpus, error)

	// FindCorpora retrieves corpora matching the filter.
	FindCorpora(ctx context.Context, filter CorpusFilter) ([]*Corpus, error)

	// UpdateCorpus updates an existing corpus.
	// Returns ENOTFOUND if the corpus does not exist.
	UpdateCorpus(ctx context.Context, id string, upd CorpusUpdate) (*Corpus, error)

	// DeleteCorpus permanently removes a corpus and all associated
	// elements and chunks.
	// Returns ENOTFOUND if the corpus does not exist.
	DeleteCorpus(ctx context.Context, id string) error
}

// CorpusFilter represents a filter for FindCorpora.
type CorpusFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CorpusUpdate represents fields that can be updated on a corpus.
type CorpusUpdate struct {
	SourceURL *string `json:"sourceUrl"`
	Model     *string `json:"model"`
}
