// Package store exposes the public API of the succinct range filter: build
// from a sorted key/value list, point and range lookups, ordered seeks and
// iteration, and a zero-copy serialized form.
package store

import (
	"errors"
	"fmt"

	"github.com/blumTom/surf/louds"
	"github.com/blumTom/surf/louds/dense"
	"github.com/blumTom/surf/louds/sparse"
)

// ErrEmptyKey indicates that the input contained a zero-length key, which
// the trie encoding cannot represent.
var ErrEmptyKey = errors.New("keys must not be empty")

// Value is the payload type stored per key.
type Value = louds.Value

// SURF is a static, space-efficient filter over an ordered set of byte-string
// keys. Point lookups carry a bounded false-positive rate and no false
// negatives; range queries and ordered iteration run against the same
// structure.
//
// A SURF is immutable once built; any number of readers may share it without
// synchronisation.
type SURF struct {
	loudsDense  *dense.Trie
	loudsSparse *sparse.Trie
}

// New builds a filter over the given keys and their values.
//
// Keys must be sorted in ascending byte-lexicographic order and non-empty;
// runs of duplicate keys collapse into one entry keeping the first value.
// An empty key list yields an empty filter on which every query misses.
func New(rawKeys [][]byte, values []Value, options Options) (*SURF, error) {
	options.setDefaults()
	if err := options.validate(); err != nil {
		return nil, err
	}

	keys := make([]louds.Key, len(rawKeys))
	for i := range rawKeys {
		if len(rawKeys[i]) == 0 {
			return nil, fmt.Errorf("%w: key %d", ErrEmptyKey, i)
		}
		keys[i] = louds.Key(rawKeys[i])
	}

	builder := louds.NewBuilder(
		*options.IncludeDense,
		int(*options.SparseDenseRatio),
		*options.Suffix,
		int(*options.HashSuffixBits),
		int(*options.RealSuffixBits),
	)
	if err := builder.Build(keys, values); err != nil {
		return nil, fmt.Errorf("building SuRF store: %w", err)
	}

	return &SURF{
		loudsDense:  dense.New(builder),
		loudsSparse: sparse.New(builder),
	}, nil
}

// Lookup checks existence of a key and returns its value.
//
// There are no false negatives; false positives occur with a probability
// governed by the configured suffix width, in which case the returned value
// is that of the colliding entry.
func (surf *SURF) Lookup(key []byte) (Value, bool) {
	if surf.isEmpty() {
		return 0, false
	}

	k := louds.Key(key)
	if surf.loudsDense.Height() > 0 {
		value, ok, outNodeNum, resolved := surf.loudsDense.LookupKey(k)
		if resolved {
			return value, ok
		}
		return surf.loudsSparse.LookupKey(k, outNodeNum)
	}
	return surf.loudsSparse.LookupKey(k, 0)
}

// MoveToKeyGreaterThan returns an iterator positioned at the smallest stored
// key >= key (inclusive) respectively > key (exclusive, modulo the
// false-positive flag). The iterator is invalid when no such key exists.
func (surf *SURF) MoveToKeyGreaterThan(key []byte, inclusive bool) *Iterator {
	it := NewIterator(surf)
	if surf.isEmpty() {
		return it
	}
	k := louds.Key(key)

	if surf.loudsDense.Height() == 0 {
		it.couldBeFP = surf.loudsSparse.MoveToKeyGreaterThan(k, inclusive, it.sparseIter)
		return it
	}

	it.couldBeFP = surf.loudsDense.MoveToKeyGreaterThan(k, inclusive, it.denseIter)
	if !it.denseIter.IsValid() || it.denseIter.IsComplete() {
		return it
	}

	if !it.denseIter.IsSearchComplete() {
		it.passToSparse()
		it.couldBeFP = surf.loudsSparse.MoveToKeyGreaterThan(k, inclusive, it.sparseIter)
		if !it.sparseIter.IsValid() {
			it.incrementDenseIter()
		}
		return it
	}
	if !it.denseIter.IsMoveLeftComplete() {
		it.passToSparse()
		it.sparseIter.MoveToLeftMostKey()
		return it
	}

	return it
}

// MoveToKeyLessThan returns an iterator positioned at the largest stored key
// below key.
//
// It derives from an exclusive greater-than seek followed by decrements, the
// second one guarded by a point lookup; when that seek flags a potential
// false positive the iterator may sit on key itself. A stricter variant
// would scan back until the iterator's key truly compares less, at the cost
// of extra steps.
func (surf *SURF) MoveToKeyLessThan(key []byte, inclusive bool) *Iterator {
	it := surf.MoveToKeyGreaterThan(key, false)
	if !it.IsValid() {
		return surf.MoveToLast()
	}

	if !it.CouldBeFalsePositive() {
		it.Prev()
		if _, ok := surf.Lookup(key); ok {
			it.Prev()
		}
	}
	return it
}

// MoveToFirst returns an iterator at the smallest stored key, invalid for an
// empty filter.
func (surf *SURF) MoveToFirst() *Iterator {
	it := NewIterator(surf)
	if surf.isEmpty() {
		return it
	}

	if surf.loudsDense.Height() > 0 {
		it.denseIter.SetToFirstLabelInRoot()
		it.denseIter.MoveToLeftMostKey()
		if it.denseIter.IsMoveLeftComplete() {
			return it
		}
		it.passToSparse()
		it.sparseIter.MoveToLeftMostKey()
		return it
	}

	it.sparseIter.SetToFirstLabelInRoot()
	it.sparseIter.MoveToLeftMostKey()
	return it
}

// MoveToLast returns an iterator at the largest stored key, invalid for an
// empty filter.
func (surf *SURF) MoveToLast() *Iterator {
	it := NewIterator(surf)
	if surf.isEmpty() {
		return it
	}

	if surf.loudsDense.Height() > 0 {
		it.denseIter.SetToLastLabelInRoot()
		it.denseIter.MoveToRightMostKey()
		if it.denseIter.IsMoveRightComplete() {
			return it
		}
		it.passToSparse()
		it.sparseIter.MoveToRightMostKey()
		return it
	}

	it.sparseIter.SetToLastLabelInRoot()
	it.sparseIter.MoveToRightMostKey()
	return it
}

// LookupRange collects the values of all stored keys within the given
// bounds.
//
// Boundary entries whose suffix comparison cannot rule them out are
// admitted, so the result may contain false positives at either end; no
// stored key within the range is missed.
func (surf *SURF) LookupRange(leftKey []byte, leftInclusive bool, rightKey []byte, rightInclusive bool) []Value {
	var results []Value

	it := surf.MoveToKeyGreaterThan(leftKey, leftInclusive)
	right := louds.Key(rightKey)
	for ; it.IsValid(); it.Next() {
		compare := it.Compare(right)
		switch {
		case compare == louds.CouldBePositive:
			results = append(results, it.Value())
		case compare <= 0 && (rightInclusive || compare < 0):
			results = append(results, it.Value())
		case compare > 0:
			return results
		}
	}
	return results
}

// Count returns an approximate count of the stored keys in [low, high],
// including the boundaries.
//
// The count is exact except at the two boundaries, where suffix
// disambiguation may overcount by up to two.
func (surf *SURF) Count(low, high []byte) int {
	count := 0
	highKey := louds.Key(high)
	for it := surf.MoveToKeyGreaterThan(low, true); it.IsValid(); it.Next() {
		compare := it.Compare(highKey)
		if compare != louds.CouldBePositive && compare > 0 {
			break
		}
		count++
	}
	return count
}

// Height returns the trie height.
func (surf *SURF) Height() int {
	return surf.loudsSparse.Height()
}

// SparseStartLevel returns the first trie level encoded as sparse.
func (surf *SURF) SparseStartLevel() int {
	return surf.loudsSparse.StartLevel()
}

// SerializedSize returns the exact byte length of Serialize's output.
func (surf *SURF) SerializedSize() int {
	return surf.loudsDense.SerializedSize() + surf.loudsSparse.SerializedSize()
}

// Serialize writes the filter into a contiguous byte buffer.
func (surf *SURF) Serialize() []byte {
	buf := make([]byte, surf.SerializedSize())
	pos := surf.loudsDense.Serialize(buf, 0)
	surf.loudsSparse.Serialize(buf, pos)
	return buf
}

// Deserialize reconstructs a filter from a buffer produced by Serialize.
//
// The returned filter aliases the buffer instead of copying it: the buffer
// must outlive the filter and must not be mutated.
func Deserialize(src []byte) (*SURF, error) {
	loudsDense, pos, err := dense.Deserialize(src, 0)
	if err != nil {
		return nil, fmt.Errorf("deserializing dense tier: %w", err)
	}
	loudsSparse, _, err := sparse.Deserialize(src, pos)
	if err != nil {
		return nil, fmt.Errorf("deserializing sparse tier: %w", err)
	}

	return &SURF{loudsDense: loudsDense, loudsSparse: loudsSparse}, nil
}

// MemoryUsage returns the approximate in-memory footprint of the filter in
// bytes.
func (surf *SURF) MemoryUsage() uint64 {
	return uint64(surf.loudsDense.MemoryUsage() + surf.loudsSparse.MemoryUsage())
}

func (surf *SURF) isEmpty() bool {
	return surf.loudsSparse.Height() == 0
}
