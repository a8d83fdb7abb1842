package refdex

import "context"

// TokenCounter counts tokens in text. Chunk budgets and the retrieval
// context budget are expressed in these counts, so indexing and retrieval
// must share one counter per model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
