// Package dense implements the bitmap-encoded top levels of the trie: one
// 256-bit label bitmap and one 256-bit child bitmap per node, plus one
// prefix-key bit per node. Child lookup is a single rank on the child
// bitmap.
package dense

import (
	"github.com/blumTom/surf/louds"
)

// Trie is the static LOUDS-Dense encoding of the trie levels above the
// cutoff. It is immutable once constructed.
type Trie struct {
	height int

	labelBitmaps          *louds.RankBitvector
	childIndicatorBitmaps *louds.RankBitvector
	prefixkeyIndicatorBits *louds.RankBitvector
	suffixes              *louds.SuffixColumn
	values                *louds.ValueColumn
}

// New assembles the dense tier from the builder's staging vectors.
func New(b *louds.Builder) *Trie {
	t := &Trie{height: b.SparseStartLevel()}

	numBitsPerLevel := b.DenseBitsPerLevel()
	t.labelBitmaps = louds.NewRankBitvector(b.DenseLabelWords(), numBitsPerLevel, 0, t.height)
	t.childIndicatorBitmaps = louds.NewRankBitvector(b.DenseChildWords(), numBitsPerLevel, 0, t.height)
	t.prefixkeyIndicatorBits = louds.NewRankBitvector(b.DensePrefixKeyWords(), b.NodeCounts(), 0, t.height)

	kind, hashLen, realLen := b.SuffixConfig()
	if kind == louds.SuffixNone {
		t.suffixes = louds.NewEmptySuffixColumn()
	} else {
		t.suffixes = louds.NewSuffixColumn(kind, hashLen, realLen,
			b.SuffixWords(), b.SuffixBitsPerLevel(), 0, t.height)
	}

	t.values = louds.NewValueColumn(b.ValuesPerLevel(), 0, t.height)

	return t
}

// Height returns the number of dense levels.
func (t *Trie) Height() int {
	return t.height
}

// LookupKey descends the dense levels byte by byte.
//
// If the walk resolves within the dense tier, resolved is true and value/ok
// carry the result. Otherwise the caller continues the walk in the sparse
// tier starting at outNodeNum.
func (t *Trie) LookupKey(key louds.Key) (value louds.Value, ok bool, outNodeNum int, resolved bool) {
	nodeNum := 0
	for level := 0; level < t.height; level++ {
		pos := nodeNum * louds.Fanout

		// Run out of key bytes: only a prefix key can match here.
		if level >= len(key) {
			if t.prefixkeyIndicatorBits.ReadBit(nodeNum) {
				suffixPos := t.suffixPos(pos, true)
				if t.suffixes.CheckEquality(suffixPos, key, level+1) {
					return t.values.Read(suffixPos), true, 0, true
				}
			}
			return 0, false, 0, true
		}

		pos += int(key[level])

		// The key byte has no edge here.
		if !t.labelBitmaps.ReadBit(pos) {
			return 0, false, 0, true
		}

		// The trie branch terminates.
		if !t.childIndicatorBitmaps.ReadBit(pos) {
			suffixPos := t.suffixPos(pos, false)
			if t.suffixes.CheckEquality(suffixPos, key, level+1) {
				return t.values.Read(suffixPos), true, 0, true
			}
			return 0, false, 0, true
		}

		nodeNum = t.childNodeNum(pos)
	}

	// The search continues in the sparse tier.
	return 0, false, nodeNum, false
}

// MoveToKeyGreaterThan positions iter at the smallest key >= key (or > key
// for a non-inclusive seek resolved below the dense tier). The return value
// reports whether the landed position might be a false positive.
func (t *Trie) MoveToKeyGreaterThan(key louds.Key, inclusive bool, iter *Iter) bool {
	nodeNum := 0
	for level := 0; level < t.height; level++ {
		pos := nodeNum * louds.Fanout

		// Run out of key bytes: every key below this node is greater.
		if level >= len(key) {
			iter.push(t.nextPos(pos - 1))
			if t.prefixkeyIndicatorBits.ReadBit(nodeNum) {
				iter.isAtPrefixKey = true
			} else {
				iter.moveToLeftMostKey()
			}
			iter.setFlags(true, true, true, true)
			return true
		}

		pos += int(key[level])
		iter.push(pos)

		// No exact label match: advance to the next key in order.
		if !t.labelBitmaps.ReadBit(pos) {
			iter.Next()
			return false
		}

		// The trie branch terminates here; the suffix decides.
		if !t.childIndicatorBitmaps.ReadBit(pos) {
			return t.compareSuffixGreaterThan(pos, key, level+1, inclusive, iter)
		}

		nodeNum = t.childNodeNum(pos)
	}

	// The search continues in the sparse tier.
	iter.sendOutNodeNum = nodeNum
	iter.setFlags(true, false, true, true)
	return true
}

// SerializedSize returns the aligned byte size of the dense tier's
// serialized form.
func (t *Trie) SerializedSize() int {
	return louds.Align8(4) +
		t.labelBitmaps.SerializedSize() +
		t.childIndicatorBitmaps.SerializedSize() +
		t.prefixkeyIndicatorBits.SerializedSize() +
		t.suffixes.SerializedSize() +
		t.values.SerializedSize()
}

// Serialize writes the dense tier at dst[pos:] and returns the next aligned
// position.
func (t *Trie) Serialize(dst []byte, pos int) int {
	pos = louds.PutUint32Aligned(dst, pos, uint32(t.height))
	pos = t.labelBitmaps.Serialize(dst, pos)
	pos = t.childIndicatorBitmaps.Serialize(dst, pos)
	pos = t.prefixkeyIndicatorBits.Serialize(dst, pos)
	pos = t.suffixes.Serialize(dst, pos)
	pos = t.values.Serialize(dst, pos)
	return pos
}

// Deserialize reads a dense tier from src[pos:], aliasing src.
func Deserialize(src []byte, pos int) (*Trie, int, error) {
	height32, pos, err := louds.GetUint32Aligned(src, pos)
	if err != nil {
		return nil, pos, err
	}

	t := &Trie{height: int(height32)}
	if t.labelBitmaps, pos, err = louds.DeserializeRankBitvector(src, pos); err != nil {
		return nil, pos, err
	}
	if t.childIndicatorBitmaps, pos, err = louds.DeserializeRankBitvector(src, pos); err != nil {
		return nil, pos, err
	}
	if t.prefixkeyIndicatorBits, pos, err = louds.DeserializeRankBitvector(src, pos); err != nil {
		return nil, pos, err
	}
	if t.suffixes, pos, err = louds.DeserializeSuffixColumn(src, pos); err != nil {
		return nil, pos, err
	}
	if t.values, pos, err = louds.DeserializeValueColumn(src, pos); err != nil {
		return nil, pos, err
	}

	return t, pos, nil
}

// MemoryUsage returns the approximate in-memory footprint in bytes.
func (t *Trie) MemoryUsage() int {
	return t.labelBitmaps.MemoryUsage() +
		t.childIndicatorBitmaps.MemoryUsage() +
		t.prefixkeyIndicatorBits.MemoryUsage() +
		t.suffixes.MemoryUsage() +
		t.values.MemoryUsage()
}

func (t *Trie) childNodeNum(pos int) int {
	return t.childIndicatorBitmaps.Rank(pos)
}

// suffixPos maps a trie position to the ordinal of its terminal entry. A
// node's prefix-key entry precedes its leaf entries, which is what the
// final correction accounts for.
func (t *Trie) suffixPos(pos int, isPrefixKey bool) int {
	nodeNum := pos / louds.Fanout
	suffixPos := t.labelBitmaps.Rank(pos) -
		t.childIndicatorBitmaps.Rank(pos) +
		t.prefixkeyIndicatorBits.Rank(nodeNum) - 1

	if isPrefixKey && t.labelBitmaps.ReadBit(pos) && !t.childIndicatorBitmaps.ReadBit(pos) {
		suffixPos--
	}
	return suffixPos
}

// nextPos returns the position of the first set label bit strictly after
// pos. pos may be -1.
func (t *Trie) nextPos(pos int) int {
	return pos + t.labelBitmaps.DistanceToNextSetBit(pos)
}

// prevPos returns the position of the first set label bit strictly before
// pos, reporting out-of-bound when no such bit exists.
func (t *Trie) prevPos(pos int) (int, bool) {
	distance := t.labelBitmaps.DistanceToPrevSetBit(pos)
	if distance == 0 || distance > pos {
		return 0, true
	}
	return pos - distance, false
}

func (t *Trie) compareSuffixGreaterThan(pos int, key louds.Key, level int, inclusive bool, iter *Iter) bool {
	suffixPos := t.suffixPos(pos, false)
	compare := t.suffixes.Compare(suffixPos, key, level)
	if compare != louds.CouldBePositive && compare < 0 {
		iter.Next()
		return false
	}
	iter.setFlags(true, true, true, true)
	return true
}
