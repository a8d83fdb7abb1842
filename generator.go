package refdex

import "context"

// GenerateRequest configures one text generation call.
type GenerateRequest struct {
	// System is the system instruction, may be empty.
	System string `json:"system"`

	// Prompt is the user prompt.
	Prompt string `json:"prompt"`

	// Temperature controls sampling randomness.
	Temperature float32 `json:"temperature"`

	// MaxTokens caps the completion length. Zero means model default.
	MaxTokens int `json:"maxTokens,omitempty"`

	// N is the number of independent completions to produce.
	// Zero is treated as 1.
	N int `json:"n,omitempty"`
}

// Generator produces completions from a language model. Calls may fail or
// time out; callers degrade per their own policy.
type Generator interface {
	// Generate returns req.N completions for the request, in no particular
	// order. Sampling makes outputs non-repeatable across calls.
	Generate(ctx context.Context, req GenerateRequest) ([]string, error)
}
