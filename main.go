package main

import (
	"fmt"
	"log"

	"github.com/blumTom/surf/louds"
	"github.com/blumTom/surf/store"
	"golang.org/x/exp/slices"
)

func main() {
	keys := [][]byte{
		[]byte("f"),
		[]byte("far"),
		[]byte("fast"),
		[]byte("s"),
		[]byte("top"),
		[]byte("toy"),
		[]byte("trie"),
	}

	// The builder requires sorted input.
	slices.SortFunc(keys, func(x, y []byte) int {
		return louds.Key(x).CompareBytes(louds.Key(y))
	})

	values := make([]store.Value, len(keys))
	for i := range keys {
		values[i] = store.Value(i + 1)
	}

	suffix := louds.SuffixReal
	var realBits uint = 8
	surf, err := store.New(keys, values, store.Options{
		Suffix:         &suffix,
		RealSuffixBits: &realBits,
	})
	if err != nil {
		log.Panicf("Error building SuRF store: %v", err)
	}

	fmt.Printf("Built filter over %d keys: height %d, sparse tier starts at level %d, ~%d bytes\n",
		len(keys), surf.Height(), surf.SparseStartLevel(), surf.MemoryUsage())

	for _, probe := range []string{"fast", "fase", "toy", "trie", "tried"} {
		if value, ok := surf.Lookup([]byte(probe)); ok {
			fmt.Printf("  %-6q -> present, value %d\n", probe, value)
		} else {
			fmt.Printf("  %-6q -> absent\n", probe)
		}
	}

	fmt.Printf("Range [\"fare\", \"fase\") -> %v\n",
		surf.LookupRange([]byte("fare"), true, []byte("fase"), false))

	fmt.Println("Keys in order:")
	for it := surf.MoveToFirst(); it.IsValid(); it.Next() {
		fmt.Printf("  %q (value %d)\n", it.Key(), it.Value())
	}
}
