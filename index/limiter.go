package index

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// CallLimiter paces calls to external model APIs using token buckets, one
// per operation name, allowing embedding and generation to proceed at
// independent rates.
type CallLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewCallLimiter creates a CallLimiter allowing rps calls per second per
// operation, with a burst of 1.
func NewCallLimiter(rps float64) *CallLimiter {
	return &CallLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows one call of the named operation.
// Returns an error if the context is canceled before the wait completes.
func (l *CallLimiter) Wait(ctx context.Context, op string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[op]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[op] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
