package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.Expander = (*Expander)(nil)

// Expander is a mock implementation of refdex.Expander.
type Expander struct {
	ExpandFn func(ctx context.Context, query string) ([]refdex.Probe, error)
}

func (e *Expander) Expand(ctx context.Context, query string) ([]refdex.Probe, error) {
	return e.ExpandFn(ctx, query)
}
