package gemini

import (
	"context"

	"github.com/fwojciec/refdex"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// Ensure TokenCounter implements refdex.TokenCounter at compile time.
var _ refdex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with the local Gemini tokenizer. Chunk
// budgets are enforced against these counts, so no API call is involved.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter. An empty model selects the
// default model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the token count of text. Empty text counts as zero
// without touching the tokenizer.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
