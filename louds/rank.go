package louds

import (
	"github.com/blumTom/surf/bitops"
)

// RankBitvector augments a Bitvector with a precomputed popcount per
// 512-bit basic block, giving constant-time rank queries.
type RankBitvector struct {
	Bitvector
	// lut[i] holds the number of set bits strictly before basic block i.
	lut []uint32
}

// NewRankBitvector concatenates the levels of [startLevel, endLevel) and
// builds the rank index over the result.
func NewRankBitvector(wordsPerLevel [][]uint64, bitsPerLevel []int, startLevel, endLevel int) *RankBitvector {
	rv := &RankBitvector{Bitvector: *NewBitvector(wordsPerLevel, bitsPerLevel, startLevel, endLevel)}
	rv.initRankLut()

	return rv
}

// Rank returns the number of set bits in positions [0, p]. Constant time.
//
// The caller guarantees p < NumBits().
func (rv *RankBitvector) Rank(p int) int {
	const wordPerBlock = RankBasicBlockSize / WordSize

	blockID := p / RankBasicBlockSize
	offset := p & (RankBasicBlockSize - 1)

	return int(rv.lut[blockID]) + bitops.PopcountLinear(rv.words, blockID*wordPerBlock, offset+1)
}

// NumOnes returns the total number of set bits.
func (rv *RankBitvector) NumOnes() int {
	if rv.numBits == 0 {
		return 0
	}
	return rv.Rank(rv.numBits - 1)
}

func (rv *RankBitvector) initRankLut() {
	const wordPerBlock = RankBasicBlockSize / WordSize

	numBlocks := rv.numBits/RankBasicBlockSize + 1
	rv.lut = make([]uint32, numBlocks)

	cumulative := 0
	for i := 0; i < numBlocks-1; i++ {
		rv.lut[i] = uint32(cumulative)
		cumulative += bitops.PopcountLinear(rv.words, i*wordPerBlock, RankBasicBlockSize)
	}
	rv.lut[numBlocks-1] = uint32(cumulative)
}

// lutSize returns the serialized size of the rank index in bytes.
func (rv *RankBitvector) lutSize() int {
	return (rv.numBits/RankBasicBlockSize + 1) * 4
}
