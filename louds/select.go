package louds

import (
	"math/bits"

	"github.com/blumTom/surf/bitops"
)

// SelectBitvector augments a Bitvector with a sampled-position index over
// its set bits: the position of every SelectSampleInterval-th set bit is
// stored, and a select query scans forward from the nearest sample.
type SelectBitvector struct {
	Bitvector
	numOnes int
	// lut[0] is the position of the first set bit; lut[i] for i > 0 the
	// position of the (i * SelectSampleInterval)-th set bit.
	lut []uint32
}

// NewSelectBitvector concatenates the levels of [startLevel, endLevel) and
// builds the select index over the result.
func NewSelectBitvector(wordsPerLevel [][]uint64, bitsPerLevel []int, startLevel, endLevel int) *SelectBitvector {
	sv := &SelectBitvector{Bitvector: *NewBitvector(wordsPerLevel, bitsPerLevel, startLevel, endLevel)}
	sv.initSelectLut()

	return sv
}

// Select returns the position of the rank-th set bit, 1-indexed.
//
// The caller guarantees 1 <= rank <= NumOnes().
func (sv *SelectBitvector) Select(rank int) int {
	lutID := rank / SelectSampleInterval
	rankLeft := rank % SelectSampleInterval
	// The first slot stores the position of the first set bit rather than
	// the zeroth sample.
	if lutID == 0 {
		rankLeft--
	}

	pos := int(sv.lut[lutID])
	if rankLeft == 0 {
		return pos
	}

	wordID := pos / WordSize
	offset := pos % WordSize
	if offset == WordSize-1 {
		wordID++
		offset = 0
	} else {
		offset++
	}

	// Zero out the most significant bits up to the sample position.
	word := sv.words[wordID] << offset >> offset
	onesCountInWord := bits.OnesCount64(word)
	for onesCountInWord < rankLeft {
		wordID++
		word = sv.words[wordID]
		rankLeft -= onesCountInWord
		onesCountInWord = bits.OnesCount64(word)
	}

	return wordID*WordSize + bitops.SelectInWord(word, rankLeft)
}

// NumOnes returns the total number of set bits.
func (sv *SelectBitvector) NumOnes() int {
	return sv.numOnes
}

func (sv *SelectBitvector) initSelectLut() {
	numWords := sv.NumWords()

	sv.lut = append(sv.lut[:0], 0)
	samplingOnes := SelectSampleInterval
	cumulativeOnes := 0
	firstFound := false
	for i := 0; i < numWords; i++ {
		onesInWord := bits.OnesCount64(sv.words[i])
		if !firstFound && onesInWord > 0 {
			sv.lut[0] = uint32(i*WordSize + bitops.SelectInWord(sv.words[i], 1))
			firstFound = true
		}
		for cumulativeOnes+onesInWord >= samplingOnes {
			diff := samplingOnes - cumulativeOnes
			sv.lut = append(sv.lut, uint32(i*WordSize+bitops.SelectInWord(sv.words[i], diff)))
			samplingOnes += SelectSampleInterval
		}
		cumulativeOnes += onesInWord
	}
	sv.numOnes = cumulativeOnes
}

// lutSize returns the serialized size of the select index in bytes.
func (sv *SelectBitvector) lutSize() int {
	return (sv.numOnes/SelectSampleInterval + 1) * 4
}
