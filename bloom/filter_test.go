package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/refdex/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Text not yet added should return false
	assert.False(t, f.Test("How do I get the vector from a point?"))

	// Add text
	f.Add("How do I get the vector from a point?")

	// Now it should return true
	assert.True(t, f.Test("How do I get the vector from a point?"))

	// Different text should still return false
	assert.False(t, f.Test("How do I compute normals?"))
}

func TestFilter_NormalizesCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	f.Add("How do I get   the vector?")
	assert.True(t, f.Test("how do i get the vector?"))
	assert.True(t, f.Test("  How do I get the vector?  "))
}

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Seen("What does setInputCloud do?"))
	assert.True(t, f.Seen("What does setInputCloud do?"))
	assert.True(t, f.Seen("what does setinputcloud do?"))
	assert.False(t, f.Seen("What does compute do?"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Empty filter should have count near 0
	assert.Equal(t, uint(0), f.EstimatedCount())

	// Add some questions
	f.Add("How do I create a point cloud?")
	f.Add("How do I filter outliers?")
	f.Add("How do I estimate normals?")

	// Estimated count should be approximately 3
	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	question := "How do I downsample a cloud?"

	f.Add(question)
	countAfterFirst := f.EstimatedCount()

	// Adding the same text multiple times should not change the filter
	f.Add(question)
	f.Add(question)
	f.Add(question)

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(question))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	// Add 10k questions
	for i := range numItems {
		f.Add(fmt.Sprintf("how do i use feature %d?", i))
	}

	// Test with 10k questions that were NOT added
	falsePositives := 0
	for i := range testProbes {
		question := fmt.Sprintf("how do i use missing feature %d?", i)
		if f.Test(question) {
			falsePositives++
		}
	}

	// False positive rate should be approximately 1%
	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
