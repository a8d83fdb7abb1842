package qdrant

import (
	"testing"

	"github.com/fwojciec/refdex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointID(t *testing.T) {
	t.Parallel()

	t.Run("deterministic for the same vector identity", func(t *testing.T) {
		t.Parallel()

		a := pointID("pcl::PointXYZ#fine.0", refdex.TextKindContent, 0)
		b := pointID("pcl::PointXYZ#fine.0", refdex.TextKindContent, 0)
		assert.Equal(t, a, b)
	})

	t.Run("distinct across chunk, kind, and ordinal", func(t *testing.T) {
		t.Parallel()

		base := pointID("pcl::PointXYZ#fine.0", refdex.TextKindContent, 0)
		assert.NotEqual(t, base, pointID("pcl::PointXYZ#fine.1", refdex.TextKindContent, 0))
		assert.NotEqual(t, base, pointID("pcl::PointXYZ#fine.0", refdex.TextKindQuestion, 0))
		assert.NotEqual(t, base, pointID("pcl::PointXYZ#fine.0", refdex.TextKindContent, 1))
	})

	t.Run("yields a parseable UUID", func(t *testing.T) {
		t.Parallel()

		id := pointID("pcl::PointXYZ#fine.0", refdex.TextKindContent, 0)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	})
}
