package dense

import (
	"testing"

	"github.com/blumTom/surf/louds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allDenseTrie builds a trie whose every level is dense, so the tier can be
// exercised without a sparse continuation.
func allDenseTrie(t *testing.T, keys []louds.Key, values []louds.Value) *Trie {
	t.Helper()

	// The key sets used here keep every terminal at the root, so the
	// only populated level is dense and the sparse tier stays empty.
	b := louds.NewBuilder(true, 1, louds.SuffixReal, 0, 8)
	require.NoError(t, b.Build(keys, values))
	require.Equal(t, 1, b.SparseStartLevel())
	return New(b)
}

func rootLevelKeys() ([]louds.Key, []louds.Value) {
	// Every key is unique in its first byte, so all terminals sit at the
	// root level and the continuations live in the suffix column.
	keys := []louds.Key{{0x10, 0x11}, {0x42, 0x99}, {0x43}, {0xF0}}
	return keys, []louds.Value{1, 2, 3, 4}
}

func TestLookupKeyResolvedInDense(t *testing.T) {
	keys, values := rootLevelKeys()
	trie := allDenseTrie(t, keys, values)

	for i, key := range keys {
		value, ok, _, resolved := trie.LookupKey(key)
		require.True(t, resolved)
		require.True(t, ok, "key %x", key)
		assert.Equal(t, values[i], value)
	}

	_, ok, _, resolved := trie.LookupKey(louds.Key{0x44})
	assert.True(t, resolved)
	assert.False(t, ok)

	// The suffix rejects differing or missing continuations.
	_, ok, _, _ = trie.LookupKey(louds.Key{0x42, 0x55})
	assert.False(t, ok)
	_, ok, _, _ = trie.LookupKey(louds.Key{0x42})
	assert.False(t, ok)
}

func TestLookupKeyHandsOff(t *testing.T) {
	// Two keys sharing one byte: level 0 is dense, level 1 sparse.
	keys := []louds.Key{louds.Key("ab"), louds.Key("ac")}
	values := []louds.Value{1, 2}

	b := louds.NewBuilder(true, 16, louds.SuffixNone, 0, 0)
	require.NoError(t, b.Build(keys, values))
	require.Equal(t, 1, b.SparseStartLevel())
	trie := New(b)

	_, _, outNodeNum, resolved := trie.LookupKey(louds.Key("ab"))
	assert.False(t, resolved)
	assert.Equal(t, 1, outNodeNum)
}

func TestDenseIterator(t *testing.T) {
	keys, values := rootLevelKeys()
	trie := allDenseTrie(t, keys, values)

	it := NewIter(trie)
	it.SetToFirstLabelInRoot()
	it.MoveToLeftMostKey()

	var got []louds.Value
	for it.IsValid() {
		require.True(t, it.IsComplete())
		got = append(got, it.Value())
		it.Next()
	}
	assert.Equal(t, values, got)

	// And backwards from the last label.
	it = NewIter(trie)
	it.SetToLastLabelInRoot()
	it.MoveToRightMostKey()

	got = got[:0]
	for it.IsValid() {
		got = append(got, it.Value())
		it.Prev()
	}
	assert.Equal(t, []louds.Value{4, 3, 2, 1}, got)
}

func TestMoveToKeyGreaterThanWithinDense(t *testing.T) {
	keys, values := rootLevelKeys()
	trie := allDenseTrie(t, keys, values)

	// Between stored labels.
	it := NewIter(trie)
	trie.MoveToKeyGreaterThan(louds.Key{0x20}, true, it)
	require.True(t, it.IsValid())
	assert.Equal(t, louds.Key{0x42}, it.Key())

	// On a stored label: the entry sorts at or after the sought key and
	// the seek flags the position.
	it = NewIter(trie)
	fp := trie.MoveToKeyGreaterThan(louds.Key{0x42}, true, it)
	require.True(t, it.IsValid())
	assert.True(t, fp)
	assert.Equal(t, louds.Key{0x42}, it.Key())

	// Past the last label.
	it = NewIter(trie)
	trie.MoveToKeyGreaterThan(louds.Key{0xF1}, true, it)
	assert.False(t, it.IsValid())
}

func TestDenseSerializationRoundTrip(t *testing.T) {
	keys, values := rootLevelKeys()
	trie := allDenseTrie(t, keys, values)

	buf := make([]byte, trie.SerializedSize())
	end := trie.Serialize(buf, 0)
	require.Equal(t, len(buf), end)

	restored, pos, err := Deserialize(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), pos)
	assert.Equal(t, trie.Height(), restored.Height())

	for i, key := range keys {
		value, ok, _, resolved := restored.LookupKey(key)
		require.True(t, resolved)
		require.True(t, ok)
		assert.Equal(t, values[i], value)
	}
}
