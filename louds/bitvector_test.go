package louds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBitvectorConcatenation(t *testing.T) {
	// Three levels with fractional bit counts: 3 bits "101", 2 bits "01",
	// 65 bits "1" then 63 zeros then "1".
	wordsPerLevel := [][]uint64{
		{0xA000000000000000},
		{0x4000000000000000},
		{0x8000000000000000, 0x8000000000000000},
	}
	bitsPerLevel := []int{3, 2, 65}

	bv := NewBitvector(wordsPerLevel, bitsPerLevel, 0, 3)
	require.Equal(t, 70, bv.NumBits())
	require.Equal(t, 2, bv.NumWords())

	// Concatenated stream: 101 01 1 0^63 1
	expected := []bool{true, false, true, false, true, true}
	for i, want := range expected {
		assert.Equal(t, want, bv.ReadBit(i), "bit %d", i)
	}
	for i := 6; i < 69; i++ {
		assert.False(t, bv.ReadBit(i), "bit %d", i)
	}
	assert.True(t, bv.ReadBit(69))
}

func TestNewBitvectorLevelRange(t *testing.T) {
	wordsPerLevel := [][]uint64{
		{0xFFFFFFFFFFFFFFFF},
		{0x8000000000000000},
		{0xC000000000000000},
	}
	bitsPerLevel := []int{8, 1, 2}

	// Only levels 1 and 2.
	bv := NewBitvector(wordsPerLevel, bitsPerLevel, 1, 3)
	require.Equal(t, 3, bv.NumBits())
	assert.True(t, bv.ReadBit(0))
	assert.True(t, bv.ReadBit(1))
	assert.True(t, bv.ReadBit(2))
}

func TestDistanceToNextSetBit(t *testing.T) {
	// Bits set at 0, 5, 64, 130; 192 bits total.
	words := [][]uint64{{0x8400000000000000, 0x8000000000000000, 0x2000000000000000}}
	bv := NewBitvector(words, []int{192}, 0, 1)

	assert.Equal(t, 5, bv.DistanceToNextSetBit(0))
	assert.Equal(t, 4, bv.DistanceToNextSetBit(1))
	assert.Equal(t, 59, bv.DistanceToNextSetBit(5))
	assert.Equal(t, 66, bv.DistanceToNextSetBit(64))

	// No later set bit: one past the end.
	assert.Equal(t, 62, bv.DistanceToNextSetBit(130))
	assert.Equal(t, 1, bv.DistanceToNextSetBit(191))

	// Scanning from -1 finds the very first bit.
	assert.Equal(t, 1, bv.DistanceToNextSetBit(-1))
}

func TestDistanceToPrevSetBit(t *testing.T) {
	// Bits set at 5, 64, 130; 192 bits total.
	words := [][]uint64{{0x0400000000000000, 0x8000000000000000, 0x2000000000000000}}
	bv := NewBitvector(words, []int{192}, 0, 1)

	assert.Equal(t, 1, bv.DistanceToPrevSetBit(6))
	assert.Equal(t, 59, bv.DistanceToPrevSetBit(64))
	assert.Equal(t, 2, bv.DistanceToPrevSetBit(66))
	assert.Equal(t, 62, bv.DistanceToPrevSetBit(192))

	// No earlier set bit: the distance reaches past the position, which
	// lets callers detect the out-of-bound case via pos <= distance.
	assert.Equal(t, 6, bv.DistanceToPrevSetBit(5))
	assert.Equal(t, 4, bv.DistanceToPrevSetBit(3))
	assert.Equal(t, 0, bv.DistanceToPrevSetBit(0))
}
