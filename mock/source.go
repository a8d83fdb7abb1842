package mock

import (
	"context"

	"github.com/fwojciec/refdex"
)

var _ refdex.RecordSource = (*RecordSource)(nil)

// RecordSource is a mock implementation of refdex.RecordSource.
type RecordSource struct {
	LoadFn func(ctx context.Context) ([]*refdex.Record, error)
}

func (s *RecordSource) Load(ctx context.Context) ([]*refdex.Record, error) {
	return s.LoadFn(ctx)
}
