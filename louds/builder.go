package louds

import (
	"errors"
	"fmt"

	"github.com/blumTom/surf/bitmap"
)

// ErrUnsortedKeys indicates that the input key sequence was not sorted in
// ascending byte-lexicographic order.
var ErrUnsortedKeys = errors.New("keys must be sorted in ascending order")

// ErrKeyValueMismatch indicates that the key and value sequences differ in
// length.
var ErrKeyValueMismatch = errors.New("number of keys and values must match")

// Builder fills the per-level staging vectors of both encodings through a
// single scan of the sorted key list, then decides the dense/sparse cutoff
// level and emits the dense bitmaps from the sparse staging data.
//
// After Build returns, the accessor methods feed the static vector
// constructors of the dense and sparse packages.
type Builder struct {
	includeDense     bool
	sparseDenseRatio int
	sparseStartLevel int

	suffixKind    SuffixKind
	hashSuffixLen int
	realSuffixLen int

	// LOUDS-Sparse staging: trie level >= sparseStartLevel.
	labels             [][]byte
	childIndicatorBits []*bitmap.Bitmap
	loudsBits          []*bitmap.Bitmap

	// LOUDS-Dense staging: trie level < sparseStartLevel.
	denseLabels      []*bitmap.Bitmap
	denseChildBits   []*bitmap.Bitmap
	densePrefixBits  []*bitmap.Bitmap

	suffixes     [][]uint64
	suffixCounts []int
	values       [][]Value

	// Auxiliary per-level bookkeeping.
	nodeCounts           []int
	isLastItemTerminator []bool
}

// NewBuilder instantiates a builder for the given configuration. The
// configuration is validated by the caller.
func NewBuilder(includeDense bool, sparseDenseRatio int, suffixKind SuffixKind, hashSuffixLen, realSuffixLen int) *Builder {
	return &Builder{
		includeDense:     includeDense,
		sparseDenseRatio: sparseDenseRatio,
		suffixKind:       suffixKind,
		hashSuffixLen:    hashSuffixLen,
		realSuffixLen:    realSuffixLen,
	}
}

// Build fills in the staging vectors from the sorted key/value list.
//
// Keys must be sorted; runs of equal keys are collapsed into one terminal
// carrying the first run member's value. Empty input yields an empty trie.
func (b *Builder) Build(keys []Key, values []Value) error {
	if len(keys) != len(values) {
		return fmt.Errorf("%w: %d keys, %d values", ErrKeyValueMismatch, len(keys), len(values))
	}
	for i := 0; i+1 < len(keys); i++ {
		if keys[i+1].Less(keys[i]) {
			return fmt.Errorf("%w: key %d sorts before its predecessor", ErrUnsortedKeys, i+1)
		}
	}

	b.buildSparse(keys, values)
	if b.includeDense {
		b.determineCutoffLevel()
		b.buildDense()
	}

	return nil
}

// TreeHeight returns the number of trie levels.
func (b *Builder) TreeHeight() int {
	return len(b.labels)
}

// SparseStartLevel returns the first level encoded as sparse.
func (b *Builder) SparseStartLevel() int {
	return b.sparseStartLevel
}

// SuffixConfig returns the configured suffix kind and widths.
func (b *Builder) SuffixConfig() (SuffixKind, int, int) {
	return b.suffixKind, b.hashSuffixLen, b.realSuffixLen
}

// Labels returns the per-level sparse label sequences.
func (b *Builder) Labels() [][]byte {
	return b.labels
}

// ChildIndicatorWords returns the per-level sparse child-indicator words,
// each level grown to cover its label count.
func (b *Builder) ChildIndicatorWords() [][]uint64 {
	return bitmapWords(b.childIndicatorBits, b.sparseBitsPerLevel())
}

// LoudsWords returns the per-level sparse LOUDS words.
func (b *Builder) LoudsWords() [][]uint64 {
	return bitmapWords(b.loudsBits, b.sparseBitsPerLevel())
}

// DenseLabelWords returns the per-level dense label-bitmap words.
func (b *Builder) DenseLabelWords() [][]uint64 {
	return bitmapWords(b.denseLabels, b.denseBitsPerLevel())
}

// DenseChildWords returns the per-level dense child-bitmap words.
func (b *Builder) DenseChildWords() [][]uint64 {
	return bitmapWords(b.denseChildBits, b.denseBitsPerLevel())
}

// DensePrefixKeyWords returns the per-level prefix-key indicator words, one
// bit per node.
func (b *Builder) DensePrefixKeyWords() [][]uint64 {
	return bitmapWords(b.densePrefixBits, b.NodeCounts())
}

// NodeCounts returns the number of nodes per level.
func (b *Builder) NodeCounts() []int {
	return b.nodeCounts
}

// SuffixCounts returns the number of terminal entries per level.
func (b *Builder) SuffixCounts() []int {
	return b.suffixCounts
}

// SuffixWords returns the per-level packed suffix words.
func (b *Builder) SuffixWords() [][]uint64 {
	return b.suffixes
}

// SuffixBitsPerLevel returns the number of meaningful suffix bits per level.
func (b *Builder) SuffixBitsPerLevel() []int {
	width := b.hashSuffixLen + b.realSuffixLen
	bits := make([]int, len(b.suffixCounts))
	for level, count := range b.suffixCounts {
		bits[level] = count * width
	}
	return bits
}

// ValuesPerLevel returns the per-level value slices, in terminal order.
func (b *Builder) ValuesPerLevel() [][]Value {
	return b.values
}

// SparseBitsPerLevel returns the number of label slots per level, which is
// the bit count of the sparse child-indicator and LOUDS vectors.
func (b *Builder) SparseBitsPerLevel() []int {
	return b.sparseBitsPerLevel()
}

// DenseBitsPerLevel returns the dense bitmap bit count per level, rounded to
// whole words as the dense bitmaps are emitted word-aligned.
func (b *Builder) DenseBitsPerLevel() []int {
	return b.denseBitsPerLevel()
}

func (b *Builder) buildSparse(keys []Key, values []Value) {
	i := 0
	for i < len(keys) {
		level := b.skipCommonPrefix(keys[i])
		curpos := i

		// Collapse a run of duplicate keys; the first value wins.
		for i+1 < len(keys) && keys[curpos].Equal(keys[i+1]) {
			i++
		}

		if i < len(keys)-1 {
			level = b.insertKeyBytesToTrieUntilUnique(keys[curpos], values[curpos], keys[i+1], level)
		} else {
			// For the last key there is no successor to diverge from.
			level = b.insertKeyBytesToTrieUntilUnique(keys[curpos], values[curpos], nil, level)
		}
		b.insertSuffix(keys[curpos], level)

		i++
	}
}

// skipCommonPrefix walks down the partially-filled trie along the prefix
// shared with the previous key, which sits as the last item of each level's
// label sequence. Each shared byte confirms an internal transition, so the
// previously-written label's child indicator is set.
func (b *Builder) skipCommonPrefix(key Key) int {
	level := 0
	for level < len(key) && b.isCharCommonPrefix(key[level], level) {
		b.childIndicatorBits[level].Set(b.numItems(level) - 1)
		level++
	}
	return level
}

// insertKeyBytesToTrieUntilUnique emits key bytes starting at startLevel
// until the first byte where key and nextKey diverge. The final emitted byte
// is the key's terminal edge; if the key ran out first, the terminator label
// is emitted instead. The value is recorded at the terminal's level.
//
// It returns one past the terminal level, which is where the suffix starts.
func (b *Builder) insertKeyBytesToTrieUntilUnique(key Key, value Value, nextKey Key, startLevel int) int {
	level := startLevel
	isStartOfNode := false
	// A fresh level starts a node.
	if b.isLevelEmpty(level) {
		isStartOfNode = true
	}

	// After skipping the common prefix, the first following byte shares
	// its node with the previous key.
	b.insertKeyByte(key[level], level, isStartOfNode, false)
	level++
	if level > len(nextKey) || !HasPrefixOfLength(key, nextKey, level) {
		b.values[level-1] = append(b.values[level-1], value)
		return level
	}

	// All the following bytes inserted start a new node.
	isStartOfNode = true
	for level < len(key) && level < len(nextKey) && key[level] == nextKey[level] {
		b.insertKeyByte(key[level], level, isStartOfNode, false)
		level++
	}

	// The last byte inserted makes key unique in the trie.
	if level < len(key) {
		b.insertKeyByte(key[level], level, isStartOfNode, false)
	} else {
		b.insertKeyByte(Terminator, level, isStartOfNode, true)
	}
	b.values[level] = append(b.values[level], value)
	level++

	return level
}

func (b *Builder) insertSuffix(key Key, level int) {
	if level >= b.TreeHeight() {
		b.addLevel()
	}

	suffix := ConstructSuffix(b.suffixKind, key, b.hashSuffixLen, level, b.realSuffixLen)
	b.storeSuffix(level, suffix)
}

func (b *Builder) isCharCommonPrefix(c byte, level int) bool {
	return level < b.TreeHeight() &&
		!b.isLastItemTerminator[level] &&
		c == b.labels[level][len(b.labels[level])-1]
}

func (b *Builder) isLevelEmpty(level int) bool {
	return level >= b.TreeHeight() || len(b.labels[level]) == 0
}

func (b *Builder) insertKeyByte(c byte, level int, isStartOfNode, isTerm bool) {
	if level >= b.TreeHeight() {
		b.addLevel()
	}

	// Sets the parent node's child indicator.
	if level > 0 {
		b.childIndicatorBits[level-1].Set(b.numItems(level-1) - 1)
	}

	b.labels[level] = append(b.labels[level], c)
	if isStartOfNode {
		b.loudsBits[level].Set(b.numItems(level) - 1)
		b.nodeCounts[level]++
	}
	b.isLastItemTerminator[level] = isTerm

	// Keep the staging bitmaps sized to the label count.
	b.childIndicatorBits[level].Grow(b.numItems(level))
	b.loudsBits[level].Grow(b.numItems(level))
}

func (b *Builder) storeSuffix(level int, suffix uint64) {
	suffixLen := b.hashSuffixLen + b.realSuffixLen
	if suffixLen == 0 {
		b.suffixCounts[level-1]++
		return
	}

	pos := b.suffixCounts[level-1] * suffixLen
	if pos == len(b.suffixes[level-1])*WordSize {
		b.suffixes[level-1] = append(b.suffixes[level-1], 0)
	}

	wordID := pos / WordSize
	offset := pos % WordSize
	wordRemainingLen := WordSize - offset
	if suffixLen <= wordRemainingLen {
		b.suffixes[level-1][wordID] += suffix << (wordRemainingLen - suffixLen)
	} else {
		b.suffixes[level-1][wordID] += suffix >> (suffixLen - wordRemainingLen)
		b.suffixes[level-1] = append(b.suffixes[level-1], 0)
		wordID++
		b.suffixes[level-1][wordID] += suffix << (WordSize - (suffixLen - wordRemainingLen))
	}
	b.suffixCounts[level-1]++
}

// determineCutoffLevel grows the dense tier while the dense rendering of the
// levels already dense, times sparseDenseRatio, stays smaller than the sparse
// rendering of the levels not yet dense.
func (b *Builder) determineCutoffLevel() {
	cutoff := 0
	for cutoff < b.TreeHeight() && b.computeDenseSize(cutoff)*b.sparseDenseRatio < b.computeSparseSize(cutoff) {
		cutoff++
	}
	b.sparseStartLevel = cutoff
}

func (b *Builder) computeDenseSize(downtoLevel int) int {
	size := 0
	for level := 0; level < downtoLevel; level++ {
		size += 2 * Fanout * b.nodeCounts[level]
		if level > 0 {
			size += (b.nodeCounts[level-1] + 7) / 8
		}
		size += (b.suffixCounts[level]*(b.hashSuffixLen+b.realSuffixLen) + 7) / 8
	}
	return size
}

func (b *Builder) computeSparseSize(startLevel int) int {
	size := 0
	for level := startLevel; level < b.TreeHeight(); level++ {
		numItems := len(b.labels[level])
		size += numItems + 2*(numItems+7)/8
		size += (b.suffixCounts[level]*(b.hashSuffixLen+b.realSuffixLen) + 7) / 8
	}
	return size
}

// buildDense fills in the dense bitmaps from the sparse staging vectors of
// the levels below the cutoff. A terminator at the start of a node becomes
// the node's prefix-key bit; every other label sets its bitmap slot and
// copies the child indicator.
func (b *Builder) buildDense() {
	for level := 0; level < b.sparseStartLevel; level++ {
		b.initDenseVectors(level)
		if b.numItems(level) == 0 {
			continue
		}

		nodeNum := 0
		if b.isTerminator(level, 0) {
			b.densePrefixBits[level].Set(0)
		} else {
			b.setLabelAndChildIndicatorBitmap(level, nodeNum, 0)
		}
		for pos := 1; pos < b.numItems(level); pos++ {
			if b.isStartOfNode(level, pos) {
				nodeNum++
				if b.isTerminator(level, pos) {
					b.densePrefixBits[level].Set(nodeNum)
					continue
				}
			}
			b.setLabelAndChildIndicatorBitmap(level, nodeNum, pos)
		}
	}
}

func (b *Builder) initDenseVectors(level int) {
	labelBits := bitmap.New(b.nodeCounts[level] * Fanout)
	childBits := bitmap.New(b.nodeCounts[level] * Fanout)
	prefixBits := bitmap.New(b.nodeCounts[level])

	b.denseLabels = append(b.denseLabels, labelBits)
	b.denseChildBits = append(b.denseChildBits, childBits)
	b.densePrefixBits = append(b.densePrefixBits, prefixBits)
}

func (b *Builder) setLabelAndChildIndicatorBitmap(level, nodeNum, pos int) {
	label := b.labels[level][pos]
	b.denseLabels[level].Set(nodeNum*Fanout + int(label))
	if b.childIndicatorBits[level].Get(pos) {
		b.denseChildBits[level].Set(nodeNum*Fanout + int(label))
	}
}

func (b *Builder) addLevel() {
	b.labels = append(b.labels, nil)
	b.childIndicatorBits = append(b.childIndicatorBits, bitmap.New(0))
	b.loudsBits = append(b.loudsBits, bitmap.New(0))
	b.suffixes = append(b.suffixes, nil)
	b.suffixCounts = append(b.suffixCounts, 0)
	b.values = append(b.values, nil)

	b.nodeCounts = append(b.nodeCounts, 0)
	b.isLastItemTerminator = append(b.isLastItemTerminator, false)
}

func (b *Builder) numItems(level int) int {
	return len(b.labels[level])
}

func (b *Builder) isStartOfNode(level, pos int) bool {
	return b.loudsBits[level].Get(pos)
}

func (b *Builder) isTerminator(level, pos int) bool {
	return b.labels[level][pos] == Terminator && !b.childIndicatorBits[level].Get(pos)
}

func (b *Builder) sparseBitsPerLevel() []int {
	bits := make([]int, len(b.labels))
	for level := range b.labels {
		bits[level] = len(b.labels[level])
	}
	return bits
}

func (b *Builder) denseBitsPerLevel() []int {
	bits := make([]int, len(b.denseLabels))
	for level := range b.denseLabels {
		bits[level] = b.nodeCounts[level] * Fanout
	}
	return bits
}

func bitmapWords(bitmaps []*bitmap.Bitmap, bitsPerLevel []int) [][]uint64 {
	words := make([][]uint64, len(bitmaps))
	for level, bm := range bitmaps {
		if level < len(bitsPerLevel) {
			bm.Grow(bitsPerLevel[level])
		}
		words[level] = bm.Words()
	}
	return words
}
