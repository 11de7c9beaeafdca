package louds

import (
	"math/bits"

	"github.com/blumTom/surf/bitops"
)

// Bitvector is a static, fixed-length bit array. It is assembled once, by
// concatenating per-level staging bitmaps, and never mutated afterwards.
//
// Bit 0 is the most significant bit of word 0. A level whose bit count is
// not a multiple of 64 carries its trailing bits into the next level's first
// word, so the concatenation is dense.
type Bitvector struct {
	numBits int
	words   []uint64
}

// NewBitvector concatenates the levels of the half-open range
// [startLevel, endLevel) into a single packed bitstream.
//
// wordsPerLevel holds each level's staging words; bitsPerLevel the number of
// meaningful bits per level (the staging words are zero beyond that count).
func NewBitvector(wordsPerLevel [][]uint64, bitsPerLevel []int, startLevel, endLevel int) *Bitvector {
	bv := &Bitvector{}
	bv.numBits = totalNumBits(bitsPerLevel, startLevel, endLevel)
	bv.words = make([]uint64, numWordsFor(bv.numBits))
	bv.concatenate(wordsPerLevel, bitsPerLevel, startLevel, endLevel)

	return bv
}

// NumBits returns the length of the bitvector in bits.
func (bv *Bitvector) NumBits() int {
	return bv.numBits
}

// NumWords returns the number of backing words.
func (bv *Bitvector) NumWords() int {
	return numWordsFor(bv.numBits)
}

// BitsSize returns the size of the backing words in bytes.
func (bv *Bitvector) BitsSize() int {
	return bv.NumWords() * 8
}

// ReadBit returns bit p. The caller guarantees p < NumBits().
func (bv *Bitvector) ReadBit(p int) bool {
	return bitops.ReadBit(bv.words, p)
}

// Words exposes the backing words.
func (bv *Bitvector) Words() []uint64 {
	return bv.words
}

// DistanceToNextSetBit counts bits strictly after p up to and including the
// next set bit. If no later bit is set, it returns NumBits() - p.
//
// p may be -1 to scan from the very first bit.
func (bv *Bitvector) DistanceToNextSetBit(p int) int {
	distance := 1

	wordID := (p + 1) / WordSize
	if wordID >= bv.NumWords() {
		return distance
	}
	offset := (p + 1) % WordSize

	// First word's left-over bits.
	testBits := bv.words[wordID] << offset
	if testBits > 0 {
		return distance + bits.LeadingZeros64(testBits)
	}

	if wordID == bv.NumWords()-1 {
		return bv.numBits - p
	}
	distance += WordSize - offset

	for wordID < bv.NumWords()-1 {
		wordID++
		testBits = bv.words[wordID]
		if testBits > 0 {
			return distance + bits.LeadingZeros64(testBits)
		}
		distance += WordSize
	}

	return bv.numBits - p
}

// DistanceToPrevSetBit counts bits strictly before p down to and including
// the previous set bit. If no earlier bit is set it returns p+1 (0 when p
// is 0), which lets the caller detect the out-of-bound case. p may equal
// NumBits().
func (bv *Bitvector) DistanceToPrevSetBit(p int) int {
	if p == 0 {
		return 0
	}
	distance := 1

	wordID := (p - 1) / WordSize
	offset := (p - 1) % WordSize

	// First word's left-over bits.
	testBits := bv.words[wordID] >> (WordSize - 1 - offset)
	if testBits > 0 {
		return distance + bits.TrailingZeros64(testBits)
	}
	distance += offset + 1

	for wordID > 0 {
		wordID--
		testBits = bv.words[wordID]
		if testBits > 0 {
			return distance + bits.TrailingZeros64(testBits)
		}
		distance += WordSize
	}

	return distance
}

func (bv *Bitvector) concatenate(wordsPerLevel [][]uint64, bitsPerLevel []int, startLevel, endLevel int) {
	bitShift := 0
	wordID := 0
	for level := startLevel; level < endLevel; level++ {
		if bitsPerLevel[level] == 0 {
			continue
		}

		numCompleteWords := bitsPerLevel[level] / WordSize
		for word := 0; word < numCompleteWords; word++ {
			bv.words[wordID] |= wordsPerLevel[level][word] >> bitShift
			wordID++
			if bitShift > 0 {
				bv.words[wordID] |= wordsPerLevel[level][word] << (WordSize - bitShift)
			}
		}

		bitsRemain := bitsPerLevel[level] - numCompleteWords*WordSize
		if bitsRemain > 0 {
			lastWord := wordsPerLevel[level][numCompleteWords]
			bv.words[wordID] |= lastWord >> bitShift
			if bitShift+bitsRemain < WordSize {
				bitShift += bitsRemain
			} else {
				wordID++
				if bitShift > 0 {
					bv.words[wordID] |= lastWord << (WordSize - bitShift)
				}
				bitShift = bitShift + bitsRemain - WordSize
			}
		}
	}
}

func totalNumBits(bitsPerLevel []int, startLevel, endLevel int) int {
	numBits := 0
	for level := startLevel; level < endLevel; level++ {
		numBits += bitsPerLevel[level]
	}
	return numBits
}

func numWordsFor(numBits int) int {
	if numBits%WordSize == 0 {
		return numBits / WordSize
	}
	return numBits/WordSize + 1
}
