// Package gemini implements text generation, embedding, and token counting
// using Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/refdex"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Ensure Generator implements refdex.Generator at compile time.
var _ refdex.Generator = (*Generator)(nil)

// Generator implements refdex.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects the default.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate produces req.N completions for the prompt.
func (g *Generator) Generate(ctx context.Context, req refdex.GenerateRequest) ([]string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, refdex.Errorf(refdex.EINVALID, "prompt required")
	}

	n := req.N
	if n <= 0 {
		n = 1
	}

	temp := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if n > 1 {
		config.CandidateCount = int32(n)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: req.Prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, refdex.Errorf(refdex.EINTERNAL, "gemini returned no candidates")
	}

	texts := make([]string, 0, len(result.Candidates))
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, refdex.Errorf(refdex.EINTERNAL, "gemini returned empty candidates")
	}

	return texts, nil
}
