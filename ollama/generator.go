package ollama

import (
	"context"
	"net/http"
	"strings"

	"github.com/fwojciec/refdex"
)

// Ensure Generator implements refdex.Generator at compile time.
var _ refdex.Generator = (*Generator)(nil)

// Generator implements refdex.Generator against an Ollama server.
type Generator struct {
	client *http.Client
	host   string
	model  string
}

// NewGenerator creates a new Generator. Empty host and model select the
// defaults.
func NewGenerator(host, model string) *Generator {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: &http.Client{Timeout: DefaultTimeout},
		host:   host,
		model:  model,
	}
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	System  string           `json:"system,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

// generateOptions holds generation parameters.
type generateOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate produces req.N completions for the prompt. Ollama generates one
// completion per call, so multiple candidates issue sequential requests.
func (g *Generator) Generate(ctx context.Context, req refdex.GenerateRequest) ([]string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "prompt required")
	}

	n := req.N
	if n <= 0 {
		n = 1
	}

	body := generateRequest{
		Model:  g.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		body.Options = &generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	texts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var resp generateResponse
		if err := postJSON(ctx, g.client, g.host+"/api/generate", body, &resp); err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(resp.Response); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, refdex.Errorf(refdex.EINTERNAL, "ollama returned empty completions")
	}

	return texts, nil
}
