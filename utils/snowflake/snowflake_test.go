package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	t.Run("valid worker id", func(t *testing.T) {
		node, err := NewNode(1)
		require.NoError(t, err)
		assert.NotNil(t, node)
	})

	t.Run("max worker id", func(t *testing.T) {
		node, err := NewNode(workerIDMask)
		require.NoError(t, err)
		assert.NotNil(t, node)
	})

	t.Run("negative worker id", func(t *testing.T) {
		_, err := NewNode(-1)
		assert.ErrorIs(t, err, ErrInvalidWorkerID)
	})

	t.Run("worker id too large", func(t *testing.T) {
		_, err := NewNode(workerIDMask + 1)
		assert.ErrorIs(t, err, ErrInvalidWorkerID)
	})
}

func TestNextIDMonotonic(t *testing.T) {
	node, err := NewNode(1)
	require.NoError(t, err)

	var prev int64
	for range 1000 {
		id, err := node.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestIDComponents(t *testing.T) {
	node, err := NewNode(42)
	require.NoError(t, err)

	id, err := node.NextID()
	require.NoError(t, err)

	assert.Equal(t, int64(42), WorkerID(id))
	assert.GreaterOrEqual(t, Sequence(id), int64(0))
	assert.LessOrEqual(t, Sequence(id), sequenceMask)
	assert.Greater(t, Timestamp(id), Epoch)
}
