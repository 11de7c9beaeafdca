package louds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// ErrCorruptData indicates that a serialized filter could not be decoded.
var ErrCorruptData = errors.New("corrupt serialized filter data")

// Serialized components are laid out back to back, each padded to an 8-byte
// boundary, so that deserialization can alias the word arrays of the input
// buffer in place instead of copying and re-indexing. The buffer handed to
// the deserializer must outlive the filter and must not be mutated.

func u64SliceToBytes(words []uint64) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
}

func bytesToU64Slice(b []byte) []uint64 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8)
}

func bytesToU32Slice(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4)
}

func u32SliceToBytes(words []uint32) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
}

func putUint32(dst []byte, pos int, v uint32) int {
	binary.LittleEndian.PutUint32(dst[pos:], v)
	return pos + 4
}

func getUint32(src []byte, pos int) (uint32, int, error) {
	if pos+4 > len(src) {
		return 0, pos, fmt.Errorf("%w: truncated header at offset %d", ErrCorruptData, pos)
	}
	return binary.LittleEndian.Uint32(src[pos:]), pos + 4, nil
}

// PutUint32 writes v at dst[pos:] and returns the advanced position. Callers
// are responsible for keeping components 8-byte aligned.
func PutUint32(dst []byte, pos int, v uint32) int {
	return putUint32(dst, pos, v)
}

// GetUint32 reads a little-endian uint32 at src[pos:].
func GetUint32(src []byte, pos int) (uint32, int, error) {
	return getUint32(src, pos)
}

// PutUint32Aligned writes v at dst[pos:] and returns the position advanced
// past the value's 8-byte padded slot.
func PutUint32Aligned(dst []byte, pos int, v uint32) int {
	putUint32(dst, pos, v)
	return pos + 8
}

// GetUint32Aligned reads a value written by PutUint32Aligned.
func GetUint32Aligned(src []byte, pos int) (uint32, int, error) {
	v, _, err := getUint32(src, pos)
	return v, pos + 8, err
}

func sliceRegion(src []byte, pos, size int) ([]byte, int, error) {
	if size < 0 || pos+size > len(src) {
		return nil, pos, fmt.Errorf("%w: region of %d bytes at offset %d overflows buffer", ErrCorruptData, size, pos)
	}
	return src[pos : pos+size], pos + size, nil
}

// SerializedSize returns the aligned byte size of the rank bitvector's
// serialized form.
func (rv *RankBitvector) SerializedSize() int {
	return Align8(8 + rv.BitsSize() + rv.lutSize())
}

// Serialize writes the rank bitvector at dst[pos:] and returns the next
// aligned position.
func (rv *RankBitvector) Serialize(dst []byte, pos int) int {
	start := pos
	pos = putUint32(dst, pos, uint32(rv.numBits))
	pos += 4
	pos += copy(dst[pos:], u64SliceToBytes(rv.words))
	pos += copy(dst[pos:], u32SliceToBytes(rv.lut))
	return start + rv.SerializedSize()
}

// DeserializeRankBitvector reads a rank bitvector from src[pos:], aliasing
// the word and index regions of src.
func DeserializeRankBitvector(src []byte, pos int) (*RankBitvector, int, error) {
	start := pos
	numBits32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	pos += 4

	rv := &RankBitvector{Bitvector: Bitvector{numBits: int(numBits32)}}

	wordBytes, pos, err := sliceRegion(src, pos, rv.NumWords()*8)
	if err != nil {
		return nil, pos, err
	}
	rv.words = bytesToU64Slice(wordBytes)

	lutBytes, pos, err := sliceRegion(src, pos, rv.lutSize())
	if err != nil {
		return nil, pos, err
	}
	rv.lut = bytesToU32Slice(lutBytes)

	return rv, start + rv.SerializedSize(), nil
}

// SerializedSize returns the aligned byte size of the select bitvector's
// serialized form.
func (sv *SelectBitvector) SerializedSize() int {
	return Align8(8 + sv.BitsSize() + sv.lutSize())
}

// Serialize writes the select bitvector at dst[pos:] and returns the next
// aligned position.
func (sv *SelectBitvector) Serialize(dst []byte, pos int) int {
	start := pos
	pos = putUint32(dst, pos, uint32(sv.numBits))
	pos = putUint32(dst, pos, uint32(sv.numOnes))
	pos += copy(dst[pos:], u64SliceToBytes(sv.words))
	pos += copy(dst[pos:], u32SliceToBytes(sv.lut))
	return start + sv.SerializedSize()
}

// DeserializeSelectBitvector reads a select bitvector from src[pos:],
// aliasing the word and index regions of src.
func DeserializeSelectBitvector(src []byte, pos int) (*SelectBitvector, int, error) {
	start := pos
	numBits32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	numOnes32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}

	sv := &SelectBitvector{
		Bitvector: Bitvector{numBits: int(numBits32)},
		numOnes:   int(numOnes32),
	}

	wordBytes, pos, err := sliceRegion(src, pos, sv.NumWords()*8)
	if err != nil {
		return nil, pos, err
	}
	sv.words = bytesToU64Slice(wordBytes)

	lutBytes, pos, err := sliceRegion(src, pos, sv.lutSize())
	if err != nil {
		return nil, pos, err
	}
	sv.lut = bytesToU32Slice(lutBytes)

	return sv, start + sv.SerializedSize(), nil
}

// SerializedSize returns the aligned byte size of the label vector's
// serialized form.
func (lv *LabelVector) SerializedSize() int {
	return Align8(4 + len(lv.labels))
}

// Serialize writes the label vector at dst[pos:] and returns the next
// aligned position.
func (lv *LabelVector) Serialize(dst []byte, pos int) int {
	start := pos
	pos = putUint32(dst, pos, uint32(len(lv.labels)))
	copy(dst[pos:], lv.labels)
	return start + lv.SerializedSize()
}

// DeserializeLabelVector reads a label vector from src[pos:], aliasing the
// label bytes of src.
func DeserializeLabelVector(src []byte, pos int) (*LabelVector, int, error) {
	start := pos
	numBytes32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}

	labels, _, err := sliceRegion(src, pos, int(numBytes32))
	if err != nil {
		return nil, pos, err
	}

	lv := &LabelVector{labels: labels}
	return lv, start + lv.SerializedSize(), nil
}

// SerializedSize returns the aligned byte size of the suffix column's
// serialized form.
func (sc *SuffixColumn) SerializedSize() int {
	return Align8(16 + sc.BitsSize())
}

// Serialize writes the suffix column at dst[pos:] and returns the next
// aligned position.
func (sc *SuffixColumn) Serialize(dst []byte, pos int) int {
	start := pos
	pos = putUint32(dst, pos, uint32(sc.numBits))
	dst[pos] = byte(sc.kind)
	pos += 4
	pos = putUint32(dst, pos, uint32(sc.hashLen))
	pos = putUint32(dst, pos, uint32(sc.realLen))
	copy(dst[pos:], u64SliceToBytes(sc.words))
	return start + sc.SerializedSize()
}

// DeserializeSuffixColumn reads a suffix column from src[pos:], aliasing the
// word region of src.
func DeserializeSuffixColumn(src []byte, pos int) (*SuffixColumn, int, error) {
	start := pos
	numBits32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	if pos >= len(src) {
		return nil, pos, fmt.Errorf("%w: truncated suffix header", ErrCorruptData)
	}
	kind := SuffixKind(src[pos])
	if kind > SuffixMixed {
		return nil, pos, fmt.Errorf("%w: unknown suffix kind %d", ErrCorruptData, kind)
	}
	pos += 4
	hashLen32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	realLen32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}

	sc := &SuffixColumn{
		Bitvector: Bitvector{numBits: int(numBits32)},
		kind:      kind,
		hashLen:   int(hashLen32),
		realLen:   int(realLen32),
	}
	if int(hashLen32)+int(realLen32) > WordSize {
		return nil, pos, fmt.Errorf("%w: suffix width %d exceeds %d bits", ErrCorruptData, hashLen32+realLen32, WordSize)
	}

	wordBytes, _, err := sliceRegion(src, pos, sc.NumWords()*8)
	if err != nil {
		return nil, pos, err
	}
	sc.words = bytesToU64Slice(wordBytes)

	return sc, start + sc.SerializedSize(), nil
}

// SerializedSize returns the aligned byte size of the value column's
// serialized form.
func (vc *ValueColumn) SerializedSize() int {
	return Align8(8 + len(vc.values)*8)
}

// Serialize writes the value column at dst[pos:] and returns the next
// aligned position.
func (vc *ValueColumn) Serialize(dst []byte, pos int) int {
	start := pos
	pos = putUint32(dst, pos, uint32(len(vc.values)))
	pos += 4
	copy(dst[pos:], u64SliceToBytes(vc.values))
	return start + vc.SerializedSize()
}

// DeserializeValueColumn reads a value column from src[pos:], aliasing the
// value region of src.
func DeserializeValueColumn(src []byte, pos int) (*ValueColumn, int, error) {
	start := pos
	numValues32, pos, err := getUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	pos += 4

	valueBytes, _, err := sliceRegion(src, pos, int(numValues32)*8)
	if err != nil {
		return nil, pos, err
	}

	vc := &ValueColumn{values: bytesToU64Slice(valueBytes)}
	return vc, start + vc.SerializedSize(), nil
}
