package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	bm := New(128)
	assert.Equal(t, 128, bm.NumBits())
	assert.Equal(t, 2, len(bm.Words()))

	// Sizes are rounded up to whole words.
	bm = New(5)
	assert.Equal(t, 64, bm.NumBits())

	bm = New(0)
	assert.Equal(t, 0, bm.NumBits())
}

func TestSetGet(t *testing.T) {
	bm := New(0)

	// Every bit reads as zero initially, even past the current length.
	assert.False(t, bm.Get(0))
	assert.False(t, bm.Get(1000))

	bm.Set(0)
	bm.Set(63)
	bm.Set(64)
	assert.True(t, bm.Get(0))
	assert.False(t, bm.Get(1))
	assert.True(t, bm.Get(63))
	assert.True(t, bm.Get(64))

	// MSB-first packing within words.
	assert.Equal(t, uint64(0x8000000000000001), bm.Words()[0])
	assert.Equal(t, uint64(0x8000000000000000), bm.Words()[1])
}

func TestSetGrows(t *testing.T) {
	bm := New(0)

	bm.Set(200)
	assert.True(t, bm.Get(200))
	assert.Equal(t, 256, bm.NumBits())
}

func TestUnset(t *testing.T) {
	bm := New(64)

	bm.Set(10)
	bm.Set(11)
	bm.Unset(10)
	assert.False(t, bm.Get(10))
	assert.True(t, bm.Get(11))
}

func TestGrow(t *testing.T) {
	bm := New(0)

	bm.Grow(65)
	assert.Equal(t, 128, bm.NumBits())

	// Growing never shrinks.
	bm.Grow(1)
	assert.Equal(t, 128, bm.NumBits())
}

func TestEqual(t *testing.T) {
	a := New(64)
	b := New(64)
	assert.True(t, a.Equal(b))

	a.Set(3)
	assert.False(t, a.Equal(b))

	b.Set(3)
	assert.True(t, a.Equal(b))

	b.Grow(128)
	assert.False(t, a.Equal(b))
}
