// Package bloom provides probabilistic text deduplication using Bloom filters.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter wraps a Bloom filter for deduplicating generated question text
// across an indexing run. A false positive drops one candidate question;
// false negatives are not possible.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds text to the filter.
func (f *Filter) Add(text string) {
	f.f.AddString(normalize(text))
}

// Test returns true if the text might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(text string) bool {
	return f.f.TestString(normalize(text))
}

// Seen adds text to the filter and reports whether it was already present.
func (f *Filter) Seen(text string) bool {
	return f.f.TestAndAddString(normalize(text))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// normalize folds case and whitespace so trivially reworded duplicates
// still collide.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
