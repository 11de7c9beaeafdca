package sparse

import (
	"github.com/blumTom/surf/louds"
	"github.com/blumTom/surf/stack"
)

// frame is one level of the iterator's root-to-current path. The label is
// stored alongside the position because recovering it from the position
// alone would cost a label read per level.
type frame struct {
	label byte
	pos   int
}

// Iter is a bidirectional iterator over the sparse tier. Its walk starts at
// the node handed over by the dense tier (the root, absent a dense tier).
type Iter struct {
	trie *Trie

	valid          bool
	startNodeNum   int
	isAtTerminator bool

	path stack.Stack[frame]
}

// NewIter returns an invalid iterator bound to the trie.
func NewIter(t *Trie) *Iter {
	return &Iter{trie: t}
}

// Clear invalidates the iterator, retaining its storage.
func (it *Iter) Clear() {
	it.valid = false
	it.isAtTerminator = false
	it.path.Clear()
}

// IsValid reports whether the iterator currently points to a key.
func (it *Iter) IsValid() bool { return it.valid }

// SetStartNodeNum sets the node at which the walk starts. The dense
// iterator passes its send-out node here.
func (it *Iter) SetStartNodeNum(nodeNum int) {
	it.startNodeNum = nodeNum
}

// StartNodeNum returns the walk's start node.
func (it *Iter) StartNodeNum() int {
	return it.startNodeNum
}

// Key returns the key bytes accumulated along the sparse path, excluding a
// trailing terminator.
func (it *Iter) Key() louds.Key {
	if !it.valid {
		return nil
	}

	length := it.path.Len()
	if it.isAtTerminator {
		length--
	}

	key := make(louds.Key, length)
	for i := 0; i < length; i++ {
		key[i] = it.path.At(i).label
	}
	return key
}

// Compare orders the iterator's key against the sparse portion of key,
// consulting the suffix column on equality. The result follows the suffix
// column's three-valued convention.
func (it *Iter) Compare(key louds.Key) int {
	if it.isAtTerminator && it.path.Len()-1 < len(key)-it.trie.startLevel {
		return -1
	}

	iterKey := it.Key()

	var keySparse louds.Key
	if len(key) > it.trie.startLevel {
		keySparse = key[it.trie.startLevel:]
	}

	keySparseSameLength := keySparse
	if len(keySparseSameLength) > len(iterKey) {
		keySparseSameLength = keySparseSameLength[:len(iterKey)]
	}

	compare := iterKey.CompareBytes(keySparseSameLength)
	if compare == 0 && len(iterKey) > len(keySparseSameLength) {
		compare = 1
	}
	if compare != 0 {
		return compare
	}

	// The suffix comparison sees the full sparse portion, not the
	// prefix-truncated copy used for the byte comparison.
	suffixPos := it.trie.suffixPos(it.path.Peek().pos)
	return it.trie.suffixes.Compare(suffixPos, keySparse, it.path.Len())
}

// Suffix returns the stored real-suffix bits for the current key and their
// bit length. Hash and absent suffixes yield zero.
func (it *Iter) Suffix() (uint64, int) {
	kind := it.trie.suffixes.Kind()
	if kind == louds.SuffixReal || kind == louds.SuffixMixed {
		suffixPos := it.trie.suffixPos(it.path.Peek().pos)
		return it.trie.suffixes.ReadReal(suffixPos), it.trie.suffixes.RealSuffixLen()
	}
	return 0, 0
}

// KeyWithSuffix returns the key bytes extended with the stored real-suffix
// bits, plus the number of meaningful bits in the last byte (0 meaning all).
func (it *Iter) KeyWithSuffix() (louds.Key, int) {
	key := it.Key()
	suffix, suffixLen := it.Suffix()
	if suffix == 0 || suffixLen == 0 {
		return key, 0
	}
	return louds.AppendSuffixBytes(key, suffix, suffixLen)
}

// Value returns the value stored at the current position.
func (it *Iter) Value() louds.Value {
	suffixPos := it.trie.suffixPos(it.path.Peek().pos)
	return it.trie.values.Read(suffixPos)
}

// SetToFirstLabelInRoot positions the path at the first label of the root
// node. Only meaningful when the sparse tier starts at level zero.
func (it *Iter) SetToFirstLabelInRoot() {
	it.path.Clear()
	it.path.Push(frame{label: it.trie.labels.Read(0), pos: 0})
}

// SetToLastLabelInRoot positions the path at the last label of the root
// node. Only meaningful when the sparse tier starts at level zero.
func (it *Iter) SetToLastLabelInRoot() {
	pos := it.trie.lastLabelPos(0)
	it.path.Clear()
	it.path.Push(frame{label: it.trie.labels.Read(pos), pos: pos})
}

// MoveToLeftMostKey completes the descent to the smallest key below the
// current position, starting at the start node when the path is empty.
func (it *Iter) MoveToLeftMostKey() {
	if it.path.Len() == 0 {
		pos := it.trie.firstLabelPos(it.startNodeNum)
		it.appendPos(pos)
	}

	pos := it.path.Peek().pos
	label := it.trie.labels.Read(pos)

	if !it.trie.childIndicatorBits.ReadBit(pos) {
		if label == louds.Terminator && !it.trie.isEndOfNode(pos) {
			it.isAtTerminator = true
		}
		it.valid = true
		return
	}

	for level := it.path.Len() - 1; level < it.trie.height; level++ {
		nodeNum := it.trie.childNodeNum(pos)
		pos = it.trie.firstLabelPos(nodeNum)
		label = it.trie.labels.Read(pos)

		// The trie branch terminates.
		if !it.trie.childIndicatorBits.ReadBit(pos) {
			it.appendLabelPos(label, pos)
			if label == louds.Terminator && !it.trie.isEndOfNode(pos) {
				it.isAtTerminator = true
			}
			it.valid = true
			return
		}
		it.appendLabelPos(label, pos)
	}

	// Unreachable on a well-formed trie: every descent ends in a leaf.
	it.valid = false
}

// MoveToRightMostKey completes the descent to the largest key below the
// current position, starting at the start node when the path is empty.
func (it *Iter) MoveToRightMostKey() {
	if it.path.Len() == 0 {
		pos := it.trie.lastLabelPos(it.startNodeNum)
		it.appendPos(pos)
	}

	pos := it.path.Peek().pos
	label := it.trie.labels.Read(pos)

	if !it.trie.childIndicatorBits.ReadBit(pos) {
		if label == louds.Terminator && !it.trie.isEndOfNode(pos) {
			it.isAtTerminator = true
		}
		it.valid = true
		return
	}

	for level := it.path.Len() - 1; level < it.trie.height; level++ {
		nodeNum := it.trie.childNodeNum(pos)
		pos = it.trie.lastLabelPos(nodeNum)
		label = it.trie.labels.Read(pos)

		// The trie branch terminates.
		if !it.trie.childIndicatorBits.ReadBit(pos) {
			it.appendLabelPos(label, pos)
			if label == louds.Terminator && !it.trie.isEndOfNode(pos) {
				it.isAtTerminator = true
			}
			it.valid = true
			return
		}
		it.appendLabelPos(label, pos)
	}

	// Unreachable on a well-formed trie: every descent ends in a leaf.
	it.valid = false
}

// Next advances the iterator to the following key in order. Stepping past
// the last key of the subtrie invalidates it.
func (it *Iter) Next() {
	it.isAtTerminator = false

	pos := it.path.Peek().pos + 1
	// Climb while the next position starts a new node or falls off the
	// end.
	for pos >= it.trie.loudsBits.NumBits() || it.trie.loudsBits.ReadBit(pos) {
		it.path.Pop()
		if it.path.Len() == 0 {
			it.valid = false
			return
		}
		pos = it.path.Peek().pos + 1
	}
	it.setTop(pos)
	it.MoveToLeftMostKey()
}

// Prev moves the iterator to the preceding key in order. Stepping before
// the first key of the subtrie invalidates it.
func (it *Iter) Prev() {
	it.isAtTerminator = false

	pos := it.path.Peek().pos
	if pos == 0 {
		it.valid = false
		return
	}
	// Climb while the current position is the first of its node.
	for it.trie.loudsBits.ReadBit(pos) {
		it.path.Pop()
		if it.path.Len() == 0 {
			it.valid = false
			return
		}
		pos = it.path.Peek().pos
	}
	it.setTop(pos - 1)
	it.MoveToRightMostKey()
}

func (it *Iter) appendPos(pos int) {
	it.path.Push(frame{label: it.trie.labels.Read(pos), pos: pos})
}

func (it *Iter) appendLabelPos(label byte, pos int) {
	it.path.Push(frame{label: label, pos: pos})
}

func (it *Iter) setTop(pos int) {
	it.path.ReplaceTop(frame{label: it.trie.labels.Read(pos), pos: pos})
}
