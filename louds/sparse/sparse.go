// Package sparse implements the label-vector-encoded lower levels of the
// trie: explicit edge labels with parallel child-indicator and LOUDS bits.
// Rank on the child indicators maps an edge to its child node; select on the
// LOUDS bits maps a node to its first label.
package sparse

import (
	"github.com/blumTom/surf/louds"
)

// Trie is the static LOUDS-Sparse encoding of the trie levels at and below
// the cutoff. It is immutable once constructed.
type Trie struct {
	height     int
	startLevel int

	// Number of nodes and of child edges in the dense tier; node
	// numbering is global across both encodings.
	nodeCountDense  int
	childCountDense int

	labels             *louds.LabelVector
	childIndicatorBits *louds.RankBitvector
	loudsBits          *louds.SelectBitvector
	suffixes           *louds.SuffixColumn
	values             *louds.ValueColumn
}

// New assembles the sparse tier from the builder's staging vectors.
func New(b *louds.Builder) *Trie {
	t := &Trie{
		height:     b.TreeHeight(),
		startLevel: b.SparseStartLevel(),
	}

	nodeCounts := b.NodeCounts()
	for level := 0; level < t.startLevel; level++ {
		t.nodeCountDense += nodeCounts[level]
	}
	if t.startLevel == 0 {
		t.childCountDense = 0
	} else if t.startLevel < t.height {
		t.childCountDense = t.nodeCountDense + nodeCounts[t.startLevel] - 1
	} else {
		// All levels are dense; the sparse tier is empty.
		t.childCountDense = t.nodeCountDense
	}

	t.labels = louds.NewLabelVector(b.Labels(), t.startLevel, t.height)

	numItemsPerLevel := b.SparseBitsPerLevel()
	t.childIndicatorBits = louds.NewRankBitvector(b.ChildIndicatorWords(), numItemsPerLevel, t.startLevel, t.height)
	t.loudsBits = louds.NewSelectBitvector(b.LoudsWords(), numItemsPerLevel, t.startLevel, t.height)

	kind, hashLen, realLen := b.SuffixConfig()
	if kind == louds.SuffixNone {
		t.suffixes = louds.NewEmptySuffixColumn()
	} else {
		t.suffixes = louds.NewSuffixColumn(kind, hashLen, realLen,
			b.SuffixWords(), b.SuffixBitsPerLevel(), t.startLevel, t.height)
	}

	t.values = louds.NewValueColumn(b.ValuesPerLevel(), t.startLevel, t.height)

	return t
}

// Height returns the total trie height.
func (t *Trie) Height() int {
	return t.height
}

// StartLevel returns the first level encoded by this tier.
func (t *Trie) StartLevel() int {
	return t.startLevel
}

// LookupKey walks the sparse tier starting at the node handed over by the
// dense tier (the root, absent a dense tier).
func (t *Trie) LookupKey(key louds.Key, inNodeNum int) (louds.Value, bool) {
	nodeNum := inNodeNum
	pos := t.firstLabelPos(nodeNum)

	level := t.startLevel
	for ; level < len(key); level++ {
		var ok bool
		pos, ok = t.labels.Search(key[level], pos, t.nodeSize(pos))
		if !ok {
			return 0, false
		}

		// The trie branch terminates.
		if !t.childIndicatorBits.ReadBit(pos) {
			suffixPos := t.suffixPos(pos)
			if t.suffixes.CheckEquality(suffixPos, key, level+1) {
				return t.values.Read(suffixPos), true
			}
			return 0, false
		}

		// Move to the child.
		nodeNum = t.childNodeNum(pos)
		pos = t.firstLabelPos(nodeNum)
	}

	// The key is exhausted; only the stored key being a proper prefix,
	// marked by a terminator, can match.
	if t.labels.Read(pos) == louds.Terminator && !t.childIndicatorBits.ReadBit(pos) {
		suffixPos := t.suffixPos(pos)
		if t.suffixes.CheckEquality(suffixPos, key, level+1) {
			return t.values.Read(suffixPos), true
		}
	}
	return 0, false
}

// MoveToKeyGreaterThan positions iter at the smallest key >= key within the
// subtrie the iterator's start node roots. The return value reports whether
// the landed position might be a false positive.
func (t *Trie) MoveToKeyGreaterThan(key louds.Key, inclusive bool, iter *Iter) bool {
	nodeNum := iter.startNodeNum
	pos := t.firstLabelPos(nodeNum)

	level := t.startLevel
	for ; level < len(key); level++ {
		nodeSize := t.nodeSize(pos)

		// No exact match: land on the next subtrie in order.
		newPos, ok := t.labels.Search(key[level], pos, nodeSize)
		if !ok {
			t.moveToLeftInNextSubtrie(pos, nodeSize, key[level], iter)
			return false
		}
		pos = newPos
		iter.appendLabelPos(key[level], pos)

		// The trie branch terminates here; the suffix decides.
		if !t.childIndicatorBits.ReadBit(pos) {
			return t.compareSuffixGreaterThan(pos, key, level+1, inclusive, iter)
		}

		// Move to the child.
		nodeNum = t.childNodeNum(pos)
		pos = t.firstLabelPos(nodeNum)
	}

	// Key exhausted on a terminator that is not alone in its node: the
	// iterator sits on the prefix key itself.
	if t.labels.Read(pos) == louds.Terminator && !t.childIndicatorBits.ReadBit(pos) && !t.isEndOfNode(pos) {
		iter.appendLabelPos(louds.Terminator, pos)
		iter.isAtTerminator = true
		if !inclusive {
			iter.Next()
		}
		iter.valid = true
		return false
	}

	// Key exhausted above this node: everything below is greater.
	iter.MoveToLeftMostKey()
	return false
}

// SerializedSize returns the aligned byte size of the sparse tier's
// serialized form.
func (t *Trie) SerializedSize() int {
	return 16 +
		t.labels.SerializedSize() +
		t.childIndicatorBits.SerializedSize() +
		t.loudsBits.SerializedSize() +
		t.suffixes.SerializedSize() +
		t.values.SerializedSize()
}

// Serialize writes the sparse tier at dst[pos:] and returns the next
// aligned position.
func (t *Trie) Serialize(dst []byte, pos int) int {
	pos = louds.PutUint32(dst, pos, uint32(t.height))
	pos = louds.PutUint32(dst, pos, uint32(t.startLevel))
	pos = louds.PutUint32(dst, pos, uint32(t.nodeCountDense))
	pos = louds.PutUint32(dst, pos, uint32(t.childCountDense))
	pos = t.labels.Serialize(dst, pos)
	pos = t.childIndicatorBits.Serialize(dst, pos)
	pos = t.loudsBits.Serialize(dst, pos)
	pos = t.suffixes.Serialize(dst, pos)
	pos = t.values.Serialize(dst, pos)
	return pos
}

// Deserialize reads a sparse tier from src[pos:], aliasing src.
func Deserialize(src []byte, pos int) (*Trie, int, error) {
	t := &Trie{}

	height32, pos, err := louds.GetUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	startLevel32, pos, err := louds.GetUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	nodeCountDense32, pos, err := louds.GetUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	childCountDense32, pos, err := louds.GetUint32(src, pos)
	if err != nil {
		return nil, pos, err
	}
	t.height = int(height32)
	t.startLevel = int(startLevel32)
	t.nodeCountDense = int(nodeCountDense32)
	t.childCountDense = int(childCountDense32)

	if t.labels, pos, err = louds.DeserializeLabelVector(src, pos); err != nil {
		return nil, pos, err
	}
	if t.childIndicatorBits, pos, err = louds.DeserializeRankBitvector(src, pos); err != nil {
		return nil, pos, err
	}
	if t.loudsBits, pos, err = louds.DeserializeSelectBitvector(src, pos); err != nil {
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
	return t.labels.MemoryUsage() +
		t.childIndicatorBits.MemoryUsage() +
		t.loudsBits.MemoryUsage() +
		t.suffixes.MemoryUsage() +
		t.values.MemoryUsage()
}

func (t *Trie) childNodeNum(pos int) int {
	return t.childIndicatorBits.Rank(pos) + t.childCountDense
}

func (t *Trie) firstLabelPos(nodeNum int) int {
	return t.loudsBits.Select(nodeNum + 1 - t.nodeCountDense)
}

func (t *Trie) lastLabelPos(nodeNum int) int {
	nextRank := nodeNum + 2 - t.nodeCountDense
	if nextRank > t.loudsBits.NumOnes() {
		return t.loudsBits.NumBits() - 1
	}
	return t.loudsBits.Select(nextRank) - 1
}

func (t *Trie) suffixPos(pos int) int {
	return pos - t.childIndicatorBits.Rank(pos)
}

func (t *Trie) nodeSize(pos int) int {
	return t.loudsBits.DistanceToNextSetBit(pos)
}

func (t *Trie) isEndOfNode(pos int) bool {
	return pos == t.loudsBits.NumBits()-1 || t.loudsBits.ReadBit(pos+1)
}

// moveToLeftInNextSubtrie lands the iterator on the smallest key greater
// than the unmatched label, either within this node or, when no greater
// label exists here, in the next subtrie over.
func (t *Trie) moveToLeftInNextSubtrie(pos, nodeSize int, label byte, iter *Iter) {
	gtPos, ok := t.labels.SearchGreaterThan(label, pos, nodeSize)
	if !ok {
		iter.appendPos(pos + nodeSize - 1)
		iter.Next()
		return
	}
	iter.appendPos(gtPos)
	iter.MoveToLeftMostKey()
}

func (t *Trie) compareSuffixGreaterThan(pos int, key louds.Key, level int, inclusive bool, iter *Iter) bool {
	suffixPos := t.suffixPos(pos)
	compare := t.suffixes.Compare(suffixPos, key, level)
	if compare != louds.CouldBePositive && compare < 0 {
		iter.Next()
		return false
	}
	iter.valid = true
	return true
}
