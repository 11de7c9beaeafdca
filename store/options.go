package store

import (
	"errors"
	"fmt"

	"github.com/blumTom/surf/louds"
)

// ErrInvalidOptions indicates a configuration the filter cannot be built
// with.
var ErrInvalidOptions = errors.New("invalid SuRF options")

// Options serves as an options struct to hold parameters for a specific
// SuRF instantiation. Zero-valued fields take their defaults.
type Options struct {
	// IncludeDense governs whether the top levels of the trie are encoded
	// in the dense bitmap form at all.
	//
	// The default is true.
	IncludeDense *bool

	// SparseDenseRatio is the ratio R between the sizes of the sparse and
	// dense encodings.
	//
	// The ratio governs which levels of the tree are encoded in the
	// dense, and which ones in the sparse, encoding: dense levels are
	// added while the dense rendering of the levels already dense, times
	// R, stays smaller than the sparse rendering of the levels not yet
	// dense. Reducing R leads to more
	// levels being encoded as dense, improving performance at the cost of
	// space efficiency.
	//
	// The default is 16.
	SparseDenseRatio *uint

	// Suffix selects the per-key disambiguation strategy: none, hash
	// bits, real key bits, or both.
	//
	// The default is louds.SuffixNone.
	Suffix *louds.SuffixKind

	// HashSuffixBits governs the number of additional bits which will be
	// used to store parts of the hash value of the stored keys.
	//
	// Each additional hash bit lowers the false-positive rate of point
	// queries by 50%. Hash bits do not assist range queries.
	//
	// The default is 0.
	HashSuffixBits *uint

	// RealSuffixBits governs the number of additional bits which will be
	// used to store parts of the key, in addition to what is stored in
	// the trie.
	//
	// Each additional real bit lowers the false-positive rate of both
	// point and range queries; by how much depends on the distribution of
	// the keys.
	//
	// The default is 0.
	RealSuffixBits *uint
}

// setDefaults sets default values.
func (options *Options) setDefaults() {
	if options.IncludeDense == nil {
		x := true
		options.IncludeDense = &x
	}

	if options.SparseDenseRatio == nil {
		var x uint = 16
		options.SparseDenseRatio = &x
	}

	if options.Suffix == nil {
		x := louds.SuffixNone
		options.Suffix = &x
	}

	if options.HashSuffixBits == nil {
		var x uint
		options.HashSuffixBits = &x
	}

	if options.RealSuffixBits == nil {
		var x uint
		options.RealSuffixBits = &x
	}
}

// validate rejects configurations the builder cannot honor. It expects
// defaults to have been applied.
func (options *Options) validate() error {
	if *options.IncludeDense && *options.SparseDenseRatio == 0 {
		return fmt.Errorf("%w: sparse-dense ratio must be at least 1", ErrInvalidOptions)
	}

	if *options.HashSuffixBits > 64 || *options.RealSuffixBits > 64 ||
		*options.HashSuffixBits+*options.RealSuffixBits > 64 {
		return fmt.Errorf("%w: suffix widths %d+%d exceed 64 bits",
			ErrInvalidOptions, *options.HashSuffixBits, *options.RealSuffixBits)
	}

	if *options.Suffix > louds.SuffixMixed {
		return fmt.Errorf("%w: unknown suffix kind %d", ErrInvalidOptions, *options.Suffix)
	}

	return nil
}
