package ollama

import (
	"context"
	"net/http"

	"github.com/fwojciec/refdex"
)

// Ensure Embedder implements refdex.Embedder at compile time.
var _ refdex.Embedder = (*Embedder)(nil)

// Embedder implements refdex.Embedder against an Ollama server.
type Embedder struct {
	client *http.Client
	host   string
	model  string
	dims   int
}

// NewEmbedder creates a new Embedder. Empty host and model select the
// defaults, a non-positive dims selects the default dimensionality.
func NewEmbedder(host, model string, dims int) *Embedder {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dims <= 0 {
		dims = DefaultEmbeddingDimensions
	}
	return &Embedder{
		client: &http.Client{Timeout: DefaultTimeout},
		host:   host,
		model:  model,
		dims:   dims,
	}
}

// Model returns the embedding model identifier.
func (e *Embedder) Model() string { return e.model }

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int { return e.dims }

// embedRequest is the Ollama /api/embeddings request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama /api/embeddings response format.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns one vector per input text, in input order. The Ollama
// embeddings endpoint takes a single prompt, so each text is its own request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		var resp embedResponse
		if err := postJSON(ctx, e.client, e.host+"/api/embeddings", embedRequest{Model: e.model, Prompt: text}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embedding) == 0 {
			return nil, refdex.Errorf(refdex.EINTERNAL, "ollama returned an empty embedding")
		}
		vectors[i] = resp.Embedding
	}

	return vectors, nil
}
