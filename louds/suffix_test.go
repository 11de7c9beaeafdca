package louds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructRealSuffix(t *testing.T) {
	key := Key("fast")

	// Whole bytes beyond the stored prefix.
	assert.Equal(t, uint64('t'), ConstructRealSuffix(key, 3, 8))
	assert.Equal(t, uint64('s')<<8|uint64('t'), ConstructRealSuffix(key, 2, 16))

	// A fractional bit count keeps the top bits of the next byte.
	// 't' = 0111 0100, top 4 bits = 0111.
	assert.Equal(t, uint64(0x7), ConstructRealSuffix(key, 3, 4))
	// 12 bits across 's' and 't': 0111 0011 0111.
	assert.Equal(t, uint64(0x737), ConstructRealSuffix(key, 2, 12))

	// A key too short for the requested width yields the all-zero
	// sentinel.
	assert.Equal(t, uint64(0), ConstructRealSuffix(key, 4, 8))
	assert.Equal(t, uint64(0), ConstructRealSuffix(key, 3, 16))
	assert.Equal(t, uint64(0), ConstructRealSuffix(key, 10, 8))
}

func TestConstructHashSuffix(t *testing.T) {
	key := Key("fast")

	// Deterministic and bounded by the configured width.
	first := ConstructHashSuffix(key, 8)
	assert.Equal(t, first, ConstructHashSuffix(key, 8))
	assert.Less(t, first, uint64(256))

	// Keys differing only in their last byte hash apart; this is what
	// makes hash suffixes effective against same-prefix misses.
	assert.NotEqual(t,
		ConstructHashSuffix(Key("fast"), 16),
		ConstructHashSuffix(Key("fasu"), 16))
}

func TestConstructMixedSuffix(t *testing.T) {
	key := Key("fast")

	hash := ConstructHashSuffix(key, 4)
	real := ConstructRealSuffix(key, 3, 8)
	mixed := ConstructMixedSuffix(key, 4, 3, 8)

	assert.Equal(t, hash<<8|real, mixed)
	assert.Equal(t, hash, ExtractHashSuffix(mixed, 8))
	assert.Equal(t, real, ExtractRealSuffix(mixed, 8))
}

// buildSuffixColumn packs the given suffix words through the builder's
// staging path so column reads see exactly what construction writes.
func buildSuffixColumn(t *testing.T, kind SuffixKind, hashLen, realLen int, keys []Key, levels []int) *SuffixColumn {
	t.Helper()
	require.Equal(t, len(keys), len(levels))

	b := NewBuilder(false, 1, kind, hashLen, realLen)
	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}
	for len(b.suffixes) <= maxLevel {
		b.addLevel()
	}
	for i, key := range keys {
		b.insertSuffix(key, levels[i])
	}

	return NewSuffixColumn(kind, hashLen, realLen, b.SuffixWords(), b.SuffixBitsPerLevel(), 0, b.TreeHeight())
}

func TestSuffixColumnReadStraddlesWords(t *testing.T) {
	// Width 20 bits: entries 3 and 6 straddle a 64-bit boundary.
	keys := make([]Key, 8)
	levels := make([]int, 8)
	for i := range keys {
		keys[i] = Key{byte(i + 1), byte(i * 3), 0xAB, 0xCD}
		levels[i] = 1
	}

	sc := buildSuffixColumn(t, SuffixReal, 0, 20, keys, levels)
	for i, key := range keys {
		want := ConstructRealSuffix(key, 1, 20)
		assert.Equal(t, want, sc.Read(i), "entry %d", i)
	}
}

func TestSuffixColumnCheckEquality(t *testing.T) {
	keys := []Key{Key("far"), Key("fast"), Key("s")}
	levels := []int{3, 3, 1}

	sc := buildSuffixColumn(t, SuffixReal, 0, 8, keys, levels)

	// The column flattens per level, so the level-1 entry ("s") takes
	// ordinal 0 and the level-3 entries follow.

	// "far" is exhausted at its terminal: the zero sentinel matches any
	// query continuation.
	assert.True(t, sc.CheckEquality(1, Key("far"), 3))
	assert.True(t, sc.CheckEquality(1, Key("fax"), 3))

	// "fast" stores 't'.
	assert.True(t, sc.CheckEquality(2, Key("fast"), 3))
	assert.False(t, sc.CheckEquality(2, Key("fase"), 3))
	// A query too short to carry the suffix cannot match a stored one.
	assert.False(t, sc.CheckEquality(2, Key("fas"), 3))
}

func TestSuffixColumnCheckEqualityHash(t *testing.T) {
	keys := []Key{Key("toy"), Key("top")}
	levels := []int{2, 2}

	sc := buildSuffixColumn(t, SuffixHash, 8, 0, keys, levels)

	assert.True(t, sc.CheckEquality(0, Key("toy"), 2))
	assert.True(t, sc.CheckEquality(1, Key("top"), 2))
}

func TestSuffixColumnCompare(t *testing.T) {
	keys := []Key{Key("far"), Key("fast")}
	levels := []int{3, 3}

	sc := buildSuffixColumn(t, SuffixReal, 0, 8, keys, levels)

	// Stored sentinel vs. empty query continuation: indistinguishable.
	assert.Equal(t, CouldBePositive, sc.Compare(0, Key("far"), 3))
	// Stored sentinel vs. longer query: stored orders first.
	assert.Equal(t, -1, sc.Compare(0, Key("fare"), 3))

	// Stored 't' against smaller, equal and larger continuations.
	assert.Equal(t, 1, sc.Compare(1, Key("fase"), 3))
	assert.Equal(t, CouldBePositive, sc.Compare(1, Key("fast"), 3))
	assert.Equal(t, -1, sc.Compare(1, Key("fasu"), 3))
}

func TestSuffixColumnCompareHashAndNone(t *testing.T) {
	keys := []Key{Key("toy")}
	levels := []int{2}

	// Hash suffixes cannot order keys.
	sc := buildSuffixColumn(t, SuffixHash, 8, 0, keys, levels)
	assert.Equal(t, CouldBePositive, sc.Compare(0, Key("aaa"), 2))

	// Nor can the empty column.
	empty := NewEmptySuffixColumn()
	assert.Equal(t, CouldBePositive, empty.Compare(0, Key("aaa"), 2))
	assert.True(t, empty.CheckEquality(0, Key("aaa"), 2))
}

func TestAppendSuffixBytes(t *testing.T) {
	key, bitLen := AppendSuffixBytes(Key("fa"), uint64('s'), 8)
	assert.Equal(t, Key("fas"), key)
	assert.Equal(t, 0, bitLen)

	// A fractional width pads the final byte with zeros.
	key, bitLen = AppendSuffixBytes(Key("fa"), 0x7, 4)
	assert.Equal(t, Key{'f', 'a', 0x70}, key)
	assert.Equal(t, 4, bitLen)
}
