package louds

// SuffixColumn is a packed bit array holding one suffix of width
// HashLen + RealLen bits per terminal entry. Suffixes disambiguate keys
// which share their stored prefix, trading memory for false-positive rate.
//
// For real suffixes, if the stored key is not long enough to provide the
// configured number of suffix bits, its slot is all-zero, the sentinel for
// "no suffix info associated with this key".
type SuffixColumn struct {
	Bitvector
	kind    SuffixKind
	hashLen int
	realLen int
}

// NewSuffixColumn concatenates the per-level suffix staging words of
// [startLevel, endLevel).
func NewSuffixColumn(kind SuffixKind, hashLen, realLen int, wordsPerLevel [][]uint64, bitsPerLevel []int, startLevel, endLevel int) *SuffixColumn {
	return &SuffixColumn{
		Bitvector: *NewBitvector(wordsPerLevel, bitsPerLevel, startLevel, endLevel),
		kind:      kind,
		hashLen:   hashLen,
		realLen:   realLen,
	}
}

// NewEmptySuffixColumn returns the zero-width column used for SuffixNone.
func NewEmptySuffixColumn() *SuffixColumn {
	return &SuffixColumn{kind: SuffixNone}
}

// Kind returns the column's suffix kind.
func (sc *SuffixColumn) Kind() SuffixKind {
	return sc.kind
}

// SuffixLen returns the total per-entry width in bits.
func (sc *SuffixColumn) SuffixLen() int {
	return sc.hashLen + sc.realLen
}

// HashSuffixLen returns the width of the hash portion in bits.
func (sc *SuffixColumn) HashSuffixLen() int {
	return sc.hashLen
}

// RealSuffixLen returns the width of the real portion in bits.
func (sc *SuffixColumn) RealSuffixLen() int {
	return sc.realLen
}

// Read extracts the suffix word at logical index idx. The extracted bits may
// straddle a word boundary.
func (sc *SuffixColumn) Read(idx int) uint64 {
	if sc.kind == SuffixNone {
		return 0
	}

	suffixLen := sc.SuffixLen()
	if idx*suffixLen >= sc.numBits {
		return 0
	}

	bitPos := idx * suffixLen
	wordID := bitPos / WordSize
	offset := bitPos % WordSize

	ret := sc.words[wordID] << offset >> (WordSize - suffixLen)
	if offset+suffixLen > WordSize {
		ret += sc.words[wordID+1] >> (2*WordSize - offset - suffixLen)
	}
	return ret
}

// ReadReal extracts the real portion of the suffix at logical index idx.
func (sc *SuffixColumn) ReadReal(idx int) uint64 {
	return ExtractRealSuffix(sc.Read(idx), sc.realLen)
}

// CheckEquality reports whether the stored suffix at idx is compatible with
// the querying key whose stored prefix ends at byte index level.
func (sc *SuffixColumn) CheckEquality(idx int, key Key, level int) bool {
	if sc.kind == SuffixNone {
		return true
	}
	if idx*sc.SuffixLen() >= sc.numBits {
		return false
	}

	stored := sc.Read(idx)
	if sc.kind == SuffixReal {
		// No suffix info for the stored key.
		if stored == 0 {
			return true
		}
		// The querying key is shorter than the stored key.
		if len(key) < level || (len(key)-level)*8 < sc.realLen {
			return false
		}
	}

	querying := ConstructSuffix(sc.kind, key, sc.hashLen, level, sc.realLen)
	return stored == querying
}

// Compare orders the stored real-suffix bits at idx against the querying
// key's bytes past level. It returns a negative or positive count for a
// strict ordering and CouldBePositive when the two cannot be distinguished:
// for hash or absent suffixes, and when stored and querying suffix agree.
func (sc *SuffixColumn) Compare(idx int, key Key, level int) int {
	if idx*sc.SuffixLen() >= sc.numBits || sc.kind == SuffixNone || sc.kind == SuffixHash {
		return CouldBePositive
	}

	stored := sc.Read(idx)
	querying := ConstructRealSuffix(key, level, sc.realLen)
	if sc.kind == SuffixMixed {
		stored = ExtractRealSuffix(stored, sc.realLen)
	}

	switch {
	case stored == 0 && querying == 0:
		return CouldBePositive
	case stored == 0 || stored < querying:
		return -1
	case stored == querying:
		return CouldBePositive
	default:
		return 1
	}
}

// ConstructSuffix computes the suffix word for key at the given level, per
// the configured kind and widths.
func ConstructSuffix(kind SuffixKind, key Key, hashLen, level, realLen int) uint64 {
	switch kind {
	case SuffixHash:
		return ConstructHashSuffix(key, hashLen)
	case SuffixReal:
		return ConstructRealSuffix(key, level, realLen)
	case SuffixMixed:
		return ConstructMixedSuffix(key, hashLen, level, realLen)
	default:
		return 0
	}
}

// ConstructHashSuffix keeps hashLen bits of the key hash, shifted by
// HashShift before masking.
func ConstructHashSuffix(key Key, hashLen int) uint64 {
	suffix := suffixHash(key)
	suffix <<= WordSize - hashLen - HashShift
	suffix >>= WordSize - hashLen
	return suffix
}

// ConstructRealSuffix packs the first realLen bits of the key past byte
// index level. A key too short to provide them yields the all-zero
// sentinel.
func ConstructRealSuffix(key Key, level, realLen int) uint64 {
	if len(key) < level || (len(key)-level)*8 < realLen {
		return 0
	}

	var suffix uint64
	numCompleteBytes := realLen / 8
	if numCompleteBytes > 0 {
		suffix += uint64(key[level])
		for i := 1; i < numCompleteBytes; i++ {
			suffix <<= 8
			suffix += uint64(key[level+i])
		}
	}

	offset := realLen % 8
	if offset > 0 {
		suffix <<= offset
		remaining := uint64(key[level+numCompleteBytes])
		remaining >>= 8 - offset
		suffix += remaining
	}

	return suffix
}

// ConstructMixedSuffix concatenates hash bits above real bits.
func ConstructMixedSuffix(key Key, hashLen, level, realLen int) uint64 {
	hashSuffix := ConstructHashSuffix(key, hashLen)
	realSuffix := ConstructRealSuffix(key, level, realLen)

	suffix := hashSuffix
	suffix <<= realLen
	suffix |= realSuffix
	return suffix
}

// AppendSuffixBytes extends key with the top suffixLen bits of the real
// suffix, byte by byte, and returns the number of meaningful bits in the
// final byte (0 when the suffix is byte-aligned).
func AppendSuffixBytes(key Key, suffix uint64, suffixLen int) (Key, int) {
	bitLen := suffixLen % 8
	suffix <<= WordSize - suffixLen
	for pos := 0; pos < suffixLen; pos += 8 {
		key = append(key, byte(suffix>>(WordSize-8)))
		suffix <<= 8
	}
	return key, bitLen
}

// ExtractHashSuffix strips the real portion off a stored suffix word.
func ExtractHashSuffix(suffix uint64, realLen int) uint64 {
	return suffix >> realLen
}

// ExtractRealSuffix masks a stored suffix word down to its real portion.
func ExtractRealSuffix(suffix uint64, realLen int) uint64 {
	var mask uint64 = 1
	mask <<= realLen
	mask--
	return suffix & mask
}
