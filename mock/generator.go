package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.Generator = (*Generator)(nil)

// Generator is a mock implementation of refdex.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, req refdex.GenerateRequest) ([]string, error)
}

func (g *Generator) Generate(ctx context.Context, req refdex.GenerateRequest) ([]string, error) {
	return g.GenerateFn(ctx, req)
}
