package store

import (
	"github.com/blumTom/surf/louds"
	"github.com/blumTom/surf/louds/dense"
	"github.com/blumTom/surf/louds/sparse"
)

// Iterator walks the stored keys in order, unifying the dense and sparse
// tiers: the dense sub-iterator holds the upper part of the current path and
// hands off to the sparse sub-iterator at the cutoff level.
//
// Movement advances the sparse sub-iterator first; when it exhausts its
// subtrie, the dense sub-iterator steps to the next subtrie and the sparse
// one re-descends.
type Iterator struct {
	surf *SURF

	denseIter  *dense.Iter
	sparseIter *sparse.Iter
	couldBeFP  bool
}

// NewIterator returns an invalid iterator bound to the filter. Seeks and
// MoveToFirst/MoveToLast produce positioned iterators.
func NewIterator(surf *SURF) *Iterator {
	return &Iterator{
		surf:       surf,
		denseIter:  dense.NewIter(surf.loudsDense),
		sparseIter: sparse.NewIter(surf.loudsSparse),
	}
}

// Clear invalidates the iterator, retaining its storage.
func (it *Iterator) Clear() {
	it.denseIter.Clear()
	it.sparseIter.Clear()
	it.couldBeFP = false
}

// IsValid reports whether the iterator points at a stored key.
func (it *Iterator) IsValid() bool {
	if !it.hasDense() {
		return it.sparseIter.IsValid()
	}
	return it.denseIter.IsValid() &&
		(it.denseIter.IsComplete() || it.sparseIter.IsValid())
}

// CouldBeFalsePositive reports whether the latest seek landed on an entry
// that might not correspond to the sought key. Callers holding the true key
// set may reject such entries.
func (it *Iterator) CouldBeFalsePositive() bool {
	return it.couldBeFP
}

// Compare orders the iterator's key against key, following the suffix
// column's three-valued convention on equality.
func (it *Iterator) Compare(key louds.Key) int {
	if !it.hasDense() {
		return it.sparseIter.Compare(key)
	}

	denseCompare := it.denseIter.Compare(key)
	if it.denseIter.IsComplete() || denseCompare != 0 {
		return denseCompare
	}
	return it.sparseIter.Compare(key)
}

// Key returns the current key's stored bytes. The trie keeps each key only
// up to the byte that sets it apart from the other keys, so this is the
// stored prefix; see KeyWithSuffix.
func (it *Iterator) Key() []byte {
	if !it.IsValid() {
		return nil
	}
	if !it.hasDense() {
		return it.sparseIter.Key()
	}
	if it.denseIter.IsComplete() {
		return it.denseIter.Key()
	}
	return append(it.denseIter.Key(), it.sparseIter.Key()...)
}

// Suffix returns the stored real-suffix bits of the current key and their
// bit length.
func (it *Iterator) Suffix() (uint64, int) {
	if !it.IsValid() {
		return 0, 0
	}
	if !it.hasDense() {
		return it.sparseIter.Suffix()
	}
	if it.denseIter.IsComplete() {
		return it.denseIter.Suffix()
	}
	return it.sparseIter.Suffix()
}

// KeyWithSuffix returns the current key extended with its stored real-suffix
// bits, plus the number of meaningful bits in the final byte (0 meaning
// all).
func (it *Iterator) KeyWithSuffix() ([]byte, int) {
	if !it.IsValid() {
		return nil, 0
	}
	if !it.hasDense() {
		return it.sparseIter.KeyWithSuffix()
	}
	if it.denseIter.IsComplete() {
		return it.denseIter.KeyWithSuffix()
	}
	sparseKey, bitLen := it.sparseIter.KeyWithSuffix()
	return append(it.denseIter.Key(), sparseKey...), bitLen
}

// Value returns the value stored with the current key.
func (it *Iterator) Value() Value {
	if !it.IsValid() {
		return 0
	}
	if !it.hasDense() {
		return it.sparseIter.Value()
	}
	if it.denseIter.IsComplete() {
		return it.denseIter.Value()
	}
	return it.sparseIter.Value()
}

// Next advances to the following key in order and reports whether the
// iterator is still valid.
func (it *Iterator) Next() bool {
	if !it.IsValid() {
		return false
	}
	if !it.hasDense() {
		it.sparseIter.Next()
		return it.sparseIter.IsValid()
	}
	if it.incrementSparseIter() {
		return true
	}
	return it.incrementDenseIter()
}

// Prev moves to the preceding key in order and reports whether the iterator
// is still valid.
func (it *Iterator) Prev() bool {
	if !it.IsValid() {
		return false
	}
	if !it.hasDense() {
		it.sparseIter.Prev()
		return it.sparseIter.IsValid()
	}
	if it.decrementSparseIter() {
		return true
	}
	return it.decrementDenseIter()
}

func (it *Iterator) hasDense() bool {
	return it.surf.loudsDense.Height() > 0
}

func (it *Iterator) passToSparse() {
	it.sparseIter.SetStartNodeNum(it.denseIter.SendOutNodeNum())
}

func (it *Iterator) incrementDenseIter() bool {
	if !it.denseIter.IsValid() {
		return false
	}

	it.denseIter.Next()
	if !it.denseIter.IsValid() {
		return false
	}
	if it.denseIter.IsMoveLeftComplete() {
		return true
	}

	it.passToSparse()
	it.sparseIter.MoveToLeftMostKey()
	return true
}

func (it *Iterator) incrementSparseIter() bool {
	if !it.sparseIter.IsValid() {
		return false
	}
	it.sparseIter.Next()
	return it.sparseIter.IsValid()
}

func (it *Iterator) decrementDenseIter() bool {
	if !it.denseIter.IsValid() {
		return false
	}

	it.denseIter.Prev()
	if !it.denseIter.IsValid() {
		return false
	}
	if it.denseIter.IsMoveRightComplete() {
		return true
	}

	it.passToSparse()
	it.sparseIter.MoveToRightMostKey()
	return true
}

func (it *Iterator) decrementSparseIter() bool {
	if !it.sparseIter.IsValid() {
		return false
	}
	it.sparseIter.Prev()
	return it.sparseIter.IsValid()
}
