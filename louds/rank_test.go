package louds

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveRank counts set bits in [0, pos] the slow way.
func naiveRank(bv *Bitvector, pos int) int {
	count := 0
	for i := 0; i <= pos; i++ {
		if bv.ReadBit(i) {
			count++
		}
	}
	return count
}

func TestRankSmall(t *testing.T) {
	// 10 bits: 1101000010
	words := [][]uint64{{0xD080000000000000}}
	rv := NewRankBitvector(words, []int{10}, 0, 1)

	expected := []int{1, 2, 2, 3, 3, 3, 3, 3, 4, 4}
	for pos, want := range expected {
		assert.Equal(t, want, rv.Rank(pos), "rank(%d)", pos)
	}
	assert.Equal(t, 4, rv.NumOnes())
}

func TestRankAcrossBasicBlocks(t *testing.T) {
	// Random bits over 5000 bits so several 512-bit basic blocks are
	// involved.
	rng := rand.New(rand.NewSource(1))
	numBits := 5000
	words := make([]uint64, (numBits+63)/64)
	for i := range words {
		words[i] = rng.Uint64()
	}

	rv := NewRankBitvector([][]uint64{words}, []int{numBits}, 0, 1)
	require.Equal(t, numBits, rv.NumBits())

	for i := 0; i < 200; i++ {
		pos := rng.Intn(numBits)
		assert.Equal(t, naiveRank(&rv.Bitvector, pos), rv.Rank(pos), "rank(%d)", pos)
	}
	assert.Equal(t, naiveRank(&rv.Bitvector, numBits-1), rv.NumOnes())
}

func TestSelectRegular(t *testing.T) {
	// Every third bit set over 1000 bits: the 64-bit sampling interval of
	// the select index is exercised.
	numBits := 1000
	words := make([]uint64, (numBits+63)/64)
	numOnes := 0
	for i := 0; i < numBits; i += 3 {
		words[i/64] |= 0x8000000000000000 >> (i % 64)
		numOnes++
	}

	sv := NewSelectBitvector([][]uint64{words}, []int{numBits}, 0, 1)
	require.Equal(t, numOnes, sv.NumOnes())

	for i := 1; i <= numOnes; i++ {
		assert.Equal(t, 3*(i-1), sv.Select(i), "select(%d)", i)
	}
}

func TestSelectRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	numBits := 4000
	words := make([]uint64, (numBits+63)/64)

	var onePositions []int
	for i := 0; i < numBits; i++ {
		if rng.Intn(4) == 0 {
			words[i/64] |= 0x8000000000000000 >> (i % 64)
			onePositions = append(onePositions, i)
		}
	}

	sv := NewSelectBitvector([][]uint64{words}, []int{numBits}, 0, 1)
	require.Equal(t, len(onePositions), sv.NumOnes())

	for i, pos := range onePositions {
		assert.Equal(t, pos, sv.Select(i+1), "select(%d)", i+1)
	}
}

func TestSelectDistanceToNextSetBit(t *testing.T) {
	// The select vector doubles as the node-boundary probe of the sparse
	// encoding.
	words := [][]uint64{{0xA100000000000000}}
	sv := NewSelectBitvector(words, []int{8}, 0, 1)

	assert.Equal(t, 2, sv.DistanceToNextSetBit(0))
	assert.Equal(t, 5, sv.DistanceToNextSetBit(2))
}
