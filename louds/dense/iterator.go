package dense

import (
	"github.com/blumTom/surf/louds"
	"github.com/blumTom/surf/stack"
)

// Iter is a bidirectional iterator over the dense tier.
//
// It holds the root-to-current path as a stack of trie positions; the label
// at each level is the position modulo the node fanout. Three completeness
// flags coordinate the hand-off with the sparse tier: an incomplete search,
// left move or right move means the sparse tier must finish the descent
// starting at the send-out node.
type Iter struct {
	trie *Trie

	valid             bool
	searchComplete    bool
	moveLeftComplete  bool
	moveRightComplete bool

	sendOutNodeNum int
	isAtPrefixKey  bool

	path stack.Stack[int]
}

// NewIter returns an invalid iterator bound to the trie.
func NewIter(t *Trie) *Iter {
	return &Iter{trie: t}
}

// Clear invalidates the iterator, retaining its storage.
func (it *Iter) Clear() {
	it.valid = false
	it.isAtPrefixKey = false
	it.path.Clear()
}

// IsValid reports whether the iterator points at a key or at a dense prefix
// pending completion in the sparse tier.
func (it *Iter) IsValid() bool { return it.valid }

// IsSearchComplete reports whether a seek resolved inside the dense tier.
// If false, the sparse tier's MoveToKeyGreaterThan completes it.
func (it *Iter) IsSearchComplete() bool { return it.searchComplete }

// IsMoveLeftComplete reports whether a leftmost-key descent resolved inside
// the dense tier. If false, the sparse tier's MoveToLeftMostKey completes it.
func (it *Iter) IsMoveLeftComplete() bool { return it.moveLeftComplete }

// IsMoveRightComplete reports whether a rightmost-key descent resolved
// inside the dense tier.
func (it *Iter) IsMoveRightComplete() bool { return it.moveRightComplete }

// IsComplete reports whether the iterator's position is fully determined by
// the dense tier alone.
func (it *Iter) IsComplete() bool {
	return it.searchComplete && it.moveLeftComplete && it.moveRightComplete
}

// SendOutNodeNum returns the sparse node at which an incomplete operation
// continues.
func (it *Iter) SendOutNodeNum() int { return it.sendOutNodeNum }

// Key returns the key bytes accumulated along the dense path.
func (it *Iter) Key() louds.Key {
	if !it.valid {
		return nil
	}

	length := it.path.Len()
	if it.isAtPrefixKey {
		length--
	}

	key := make(louds.Key, length)
	for i := 0; i < length; i++ {
		key[i] = byte(it.path.At(i) % louds.Fanout)
	}
	return key
}

// Compare orders the iterator's key against key, using the suffix column
// when the position is complete. The result follows the suffix column's
// three-valued convention.
func (it *Iter) Compare(key louds.Key) int {
	if it.isAtPrefixKey && it.path.Len()-1 < len(key) {
		return -1
	}

	iterKey := it.Key()
	minLen := len(key)
	if len(iterKey) < minLen {
		minLen = len(iterKey)
	}
	keyDense := key[:minLen]

	compare := iterKey.CompareBytes(keyDense)
	if compare == 0 && len(iterKey) > len(keyDense) {
		compare = 1
	}
	if compare != 0 {
		return compare
	}

	if it.IsComplete() {
		suffixPos := it.trie.suffixPos(it.path.Peek(), it.isAtPrefixKey)
		return it.trie.suffixes.Compare(suffixPos, key, it.path.Len())
	}
	return compare
}

// Suffix returns the stored real-suffix bits for the current key and their
// bit length. Hash and absent suffixes yield zero.
func (it *Iter) Suffix() (uint64, int) {
	kind := it.trie.suffixes.Kind()
	if it.IsComplete() && (kind == louds.SuffixReal || kind == louds.SuffixMixed) {
		suffixPos := it.trie.suffixPos(it.path.Peek(), it.isAtPrefixKey)
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
	if !it.IsComplete() {
		return 0
	}
	suffixPos := it.trie.suffixPos(it.path.Peek(), it.isAtPrefixKey)
	return it.trie.values.Read(suffixPos)
}

// SetToFirstLabelInRoot positions the path at the smallest label of the
// root node.
func (it *Iter) SetToFirstLabelInRoot() {
	if it.trie.labelBitmaps.ReadBit(0) {
		it.path.Push(0)
	} else {
		it.path.Push(it.trie.nextPos(0))
	}
}

// SetToLastLabelInRoot positions the path at the largest label of the root
// node.
func (it *Iter) SetToLastLabelInRoot() {
	pos, _ := it.trie.prevPos(louds.Fanout)
	it.path.Push(pos)
}

// MoveToLeftMostKey completes the descent to the smallest key below the
// current position.
func (it *Iter) MoveToLeftMostKey() {
	it.moveToLeftMostKey()
}

// MoveToRightMostKey completes the descent to the largest key below the
// current position.
func (it *Iter) MoveToRightMostKey() {
	it.moveToRightMostKey()
}

// Next advances the iterator to the following key in order. Stepping past
// the last key invalidates it.
func (it *Iter) Next() {
	if it.isAtPrefixKey {
		it.isAtPrefixKey = false
		it.moveToLeftMostKey()
		return
	}

	pos := it.path.Peek()
	nextPos := it.trie.nextPos(pos)
	// Climb while the next label crosses the node boundary.
	for nextPos/louds.Fanout > pos/louds.Fanout {
		it.path.Pop()
		if it.path.Len() == 0 {
			it.valid = false
			return
		}
		pos = it.path.Peek()
		nextPos = it.trie.nextPos(pos)
	}
	it.path.ReplaceTop(nextPos)
	it.moveToLeftMostKey()
}

// Prev moves the iterator to the preceding key in order. Stepping before
// the first key invalidates it.
func (it *Iter) Prev() {
	if it.isAtPrefixKey {
		it.isAtPrefixKey = false
		it.path.Pop()
		if it.path.Len() == 0 {
			it.valid = false
			return
		}
	}

	pos := it.path.Peek()
	prevPos, outOfBound := it.trie.prevPos(pos)
	if outOfBound {
		it.valid = false
		return
	}

	// Climb while the previous label crosses the node boundary. A
	// prefix-key on the node being left comes after all of its
	// descendants in reverse order, so the climb stops there.
	for prevPos/louds.Fanout < pos/louds.Fanout {
		nodeNum := pos / louds.Fanout
		if it.trie.prefixkeyIndicatorBits.ReadBit(nodeNum) {
			it.isAtPrefixKey = true
			it.setFlags(true, true, true, true)
			return
		}

		it.path.Pop()
		if it.path.Len() == 0 {
			it.valid = false
			return
		}
		pos = it.path.Peek()
		prevPos, outOfBound = it.trie.prevPos(pos)
		if outOfBound {
			it.valid = false
			return
		}
	}
	it.path.ReplaceTop(prevPos)
	it.moveToRightMostKey()
}

func (it *Iter) push(pos int) {
	it.path.Push(pos)
}

func (it *Iter) setFlags(valid, searchComplete, moveLeftComplete, moveRightComplete bool) {
	it.valid = valid
	it.searchComplete = searchComplete
	it.moveLeftComplete = moveLeftComplete
	it.moveRightComplete = moveRightComplete
}

func (it *Iter) moveToLeftMostKey() {
	level := it.path.Len() - 1
	pos := it.path.Peek()
	if !it.trie.childIndicatorBitmaps.ReadBit(pos) {
		it.setFlags(true, true, true, true)
		return
	}

	for level < it.trie.height-1 {
		nodeNum := it.trie.childNodeNum(pos)

		// The current prefix is itself a key.
		if it.trie.prefixkeyIndicatorBits.ReadBit(nodeNum) {
			it.push(it.trie.nextPos(nodeNum*louds.Fanout - 1))
			it.isAtPrefixKey = true
			it.setFlags(true, true, true, true)
			return
		}

		pos = it.trie.nextPos(nodeNum*louds.Fanout - 1)
		it.push(pos)

		// The trie branch terminates.
		if !it.trie.childIndicatorBitmaps.ReadBit(pos) {
			it.setFlags(true, true, true, true)
			return
		}

		level++
	}

	it.sendOutNodeNum = it.trie.childNodeNum(pos)
	it.setFlags(true, true, false, true)
}

func (it *Iter) moveToRightMostKey() {
	level := it.path.Len() - 1
	pos := it.path.Peek()
	if !it.trie.childIndicatorBitmaps.ReadBit(pos) {
		it.setFlags(true, true, true, true)
		return
	}

	for level < it.trie.height-1 {
		nodeNum := it.trie.childNodeNum(pos)
		prevPos, outOfBound := it.trie.prevPos((nodeNum + 1) * louds.Fanout)
		if outOfBound {
			it.valid = false
			return
		}
		pos = prevPos
		it.push(pos)

		// The trie branch terminates.
		if !it.trie.childIndicatorBitmaps.ReadBit(pos) {
			it.setFlags(true, true, true, true)
			return
		}

		level++
	}

	it.sendOutNodeNum = it.trie.childNodeNum(pos)
	it.setFlags(true, true, true, false)
}
