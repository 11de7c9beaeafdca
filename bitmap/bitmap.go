package bitmap

import (
	"fmt"
	"math"

	"github.com/blumTom/surf/bitops"
)

// Bitmap is a growable continuous binary structure, allowing access to
// individual bits.
//
// It is the staging form of the succinct bit-sequences: the builder appends
// to per-level bitmaps, which are later concatenated into the static,
// index-carrying vectors of the louds package.
//
// Under the hood it is implemented as a slice of uint64 which grows as
// required. Bit 0 is the most significant bit of word 0.
type Bitmap struct {
	data []uint64
}

// New initializes a new bitmap with size accessible bits, all zero.
func New(size int) *Bitmap {
	dataSize := size / 64
	if size%64 != 0 {
		dataSize++
	}

	return &Bitmap{data: make([]uint64, dataSize)}
}

// Set sets the bit at a given index to 1, growing the bitmap if the index
// lies past its current length.
//
// A negative index is a programming error and panics.
func (bm *Bitmap) Set(bit int) {
	if bit < 0 {
		panic("bitmap: negative index")
	}
	bm.Grow(bit + 1)

	idx := bit / 64
	offset := bit % 64

	bm.data[idx] |= bitops.SingleOneMask(offset)
}

// Unset sets the bit at a given index to 0, growing the bitmap if the index
// lies past its current length.
func (bm *Bitmap) Unset(bit int) {
	bm.Grow(bit + 1)

	idx := bit / 64
	offset := bit % 64

	// 64 1s, except for one 0 at offset
	bm.data[idx] &= bitops.OnesMask(offset, 64-offset-1)
}

// Get retrieves the value at a given index. Bits past the current length
// read as 0.
func (bm *Bitmap) Get(bit int) bool {
	if bit >= bm.NumBits() {
		return false
	}

	return bitops.ReadBit(bm.data, bit)
}

// Grow increases the bitmap's internal memory such that at least n bits are
// accessible.
func (bm *Bitmap) Grow(n int) {
	newLength := n / 64
	if n%64 != 0 {
		newLength++
	}

	for len(bm.data) < newLength {
		bm.data = append(bm.data, 0)
	}
}

// NumBits returns the number of currently accessible bits. It is always a
// multiple of 64.
func (bm *Bitmap) NumBits() int {
	return len(bm.data) * 64
}

// Words exposes the backing words for concatenation into a static vector.
//
// The returned slice aliases the bitmap's storage and must not be retained
// across further mutation.
func (bm *Bitmap) Words() []uint64 {
	return bm.data
}

// String returns a representation of the bitmap's contents as a string of
// bits.
//
// Each stored bit is encoded as either a 0 or 1 ASCII character. Eight bits
// are grouped together, with 8 bytes per line. The output also contains
// decimal bit offsets per line.
func (bm Bitmap) String() string {
	out := ""

	if len(bm.data) == 0 {
		return out
	}

	maxOffsetLength := int(math.Ceil(math.Log10(float64(bm.NumBits()))))
	// Decimal (%d), padded to maxOffsetLength with 0s rather than spaces.
	pattern := fmt.Sprintf("%%0%dd |", maxOffsetLength)

	for i := 0; i < len(bm.data); i++ {
		out += fmt.Sprintf(pattern, i*64)

		bitsString := fmt.Sprintf("%064b", bm.data[i])

		// A space every eight digits.
		for j := 0; j < 64; j += 8 {
			b := bitsString[j : j+8]
			out += fmt.Sprintf(" %s", b)
		}

		out += "\n"
	}

	return out
}

// Equal checks whether the length and content of two bitmaps is equal.
func (bm *Bitmap) Equal(other *Bitmap) bool {
	if len(bm.data) != len(other.data) {
		return false
	}

	for i := range bm.data {
		if bm.data[i] != other.data[i] {
			return false
		}
	}

	return true
}
