package louds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelVectorConcatenation(t *testing.T) {
	labelsPerLevel := [][]byte{
		{'f', 's', 't'},
		{Terminator, 'a', 'o', 'r'},
		{'r', 's', 'p', 'y'},
	}

	lv := NewLabelVector(labelsPerLevel, 0, 3)
	require.Equal(t, 11, lv.NumBytes())
	assert.Equal(t, byte('f'), lv.Read(0))
	assert.Equal(t, Terminator, lv.Read(3))
	assert.Equal(t, byte('y'), lv.Read(10))

	// A sub-range of levels.
	lv = NewLabelVector(labelsPerLevel, 1, 3)
	require.Equal(t, 8, lv.NumBytes())
	assert.Equal(t, Terminator, lv.Read(0))
}

func TestSearch(t *testing.T) {
	labels := [][]byte{{'b', 'd', 'f', 'h'}}
	lv := NewLabelVector(labels, 0, 1)

	pos, ok := lv.Search('d', 0, 4)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = lv.Search('c', 0, 4)
	assert.False(t, ok)

	// Search within a node sub-range.
	pos, ok = lv.Search('h', 2, 2)
	require.True(t, ok)
	assert.Equal(t, 3, pos)
}

func TestSearchSkipsTerminator(t *testing.T) {
	labels := [][]byte{{Terminator, 'b', 'd'}}
	lv := NewLabelVector(labels, 0, 1)

	// The leading terminator must not match a query byte, even 0xFF.
	pos, ok := lv.Search('b', 0, 3)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = lv.Search(0xFF, 0, 3)
	assert.False(t, ok)

	// A single-label node is just the terminator; there is nothing to
	// skip.
	lv = NewLabelVector([][]byte{{Terminator}}, 0, 1)
	pos, ok = lv.Search(0xFF, 0, 1)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestSearchDispatchSizes(t *testing.T) {
	// Node sizes crossing the linear/binary/vectorized thresholds all
	// agree on the smallest matching position.
	for _, size := range []int{1, 2, 3, 11, 12, 40, 200} {
		labels := make([]byte, size)
		for i := range labels {
			labels[i] = byte(i)
		}
		lv := NewLabelVector([][]byte{labels}, 0, 1)

		for i := 0; i < size; i++ {
			pos, ok := lv.Search(byte(i), 0, size)
			require.True(t, ok, "size %d target %d", size, i)
			assert.Equal(t, i, pos, "size %d target %d", size, i)
		}

		_, ok := lv.Search(byte(size), 0, size)
		assert.False(t, ok, "size %d", size)
	}
}

func TestSearchGreaterThan(t *testing.T) {
	labels := [][]byte{{'b', 'd', 'f', 'h'}}
	lv := NewLabelVector(labels, 0, 1)

	// Strictly greater, both for present and absent targets.
	pos, ok := lv.SearchGreaterThan('d', 0, 4)
	require.True(t, ok)
	assert.Equal(t, 2, pos)

	pos, ok = lv.SearchGreaterThan('c', 0, 4)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	pos, ok = lv.SearchGreaterThan(0x00, 0, 4)
	require.True(t, ok)
	assert.Equal(t, 0, pos)

	// Nothing greater than the last label.
	_, ok = lv.SearchGreaterThan('h', 0, 4)
	assert.False(t, ok)
	_, ok = lv.SearchGreaterThan('z', 0, 4)
	assert.False(t, ok)
}

func TestSearchGreaterThanSkipsTerminator(t *testing.T) {
	labels := [][]byte{{Terminator, 'b', 'd'}}
	lv := NewLabelVector(labels, 0, 1)

	pos, ok := lv.SearchGreaterThan('a', 0, 3)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = lv.SearchGreaterThan('d', 0, 3)
	assert.False(t, ok)
}

func TestSearchGreaterThanLargeNode(t *testing.T) {
	labels := make([]byte, 100)
	for i := range labels {
		labels[i] = byte(i * 2)
	}
	lv := NewLabelVector([][]byte{labels}, 0, 1)

	for i := 0; i < 99; i++ {
		// An even target is present; the next label is greater.
		pos, ok := lv.SearchGreaterThan(byte(i*2), 0, 100)
		require.True(t, ok)
		assert.Equal(t, i+1, pos)

		// An odd target falls between labels.
		pos, ok = lv.SearchGreaterThan(byte(i*2+1), 0, 100)
		require.True(t, ok)
		assert.Equal(t, i+1, pos)
	}
}
