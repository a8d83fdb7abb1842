package gemini

import (
	"context"

	"github.com/fwojciec/refdex"
	"google.golang.org/genai"
)

// DefaultEmbeddingDimensions is the output size of the default embedding model.
const DefaultEmbeddingDimensions = 768

// Ensure Embedder implements refdex.Embedder at compile time.
var _ refdex.Embedder = (*Embedder)(nil)

// Embedder implements refdex.Embedder using Google Gemini.
type Embedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewEmbedder creates a new Embedder. An empty model selects the default
// model, a non-positive dims selects the default dimensionality.
func NewEmbedder(client *genai.Client, model string, dims int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dims <= 0 {
		dims = DefaultEmbeddingDimensions
	}
	return &Embedder{client: client, model: model, dims: dims}
}

// Model returns the embedding model identifier.
func (e *Embedder) Model() string { return e.model }

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed returns one vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, "user")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, refdex.Errorf(refdex.EINTERNAL, "gemini returned %d embeddings for %d texts", embeddingCount(result), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, refdex.Errorf(refdex.EINTERNAL, "gemini returned an empty embedding")
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}
