package louds

import "bytes"

// Key defines a single key which can be stored in the filter.
type Key []byte

// Less implements a lexicographic ordering of keys.
//
// It compares pairs of corresponding (at the same index) bytes of the two
// keys. If the two bytes differ, the key with the lesser byte is considered
// lesser.
//
// If all pairs of corresponding bytes are equal, the key with the lesser
// length is lesser.
//
// If the two keys are equal, none is considered lesser than the other.
func (key Key) Less(other Key) bool {
	return bytes.Compare(key, other) < 0
}

// CompareBytes orders the two keys byte-lexicographically, returning a
// negative, zero or positive result.
func (key Key) CompareBytes(other Key) int {
	return bytes.Compare(key, other)
}

// Equal reports whether the two keys have identical bytes.
func (key Key) Equal(other Key) bool {
	return bytes.Equal(key, other)
}

// HasPrefixOfLength reports whether the first n bytes of the two keys are
// identical. The caller guarantees both keys carry at least n bytes.
func HasPrefixOfLength(a, b Key, n int) bool {
	return bytes.Equal(a[:n], b[:n])
}
