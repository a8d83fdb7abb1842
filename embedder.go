package refdex

import "context"

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding model. Vectors from different models
	// must never be compared.
	Model() string

	// Dimensions is the length of vectors produced by this embedder.
	Dimensions() int
}
