package cuckoofilter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitvecBasicOps(t *testing.T) {
	b := newBitvec(12345)
	assert.Equal(t, 12352, b.len())

	assert.Equal(t, uint64(0), b.getUint(0, 1))
	b.setUint(0, 1, 1)
	assert.Equal(t, uint64(1), b.getUint(0, 1))

	assert.Equal(t, uint64(0), b.getUint(333, 10))
	b.setUint(333, 10, 0b10_1101_0001)
	assert.Equal(t, uint64(0b10_1101_0001), b.getUint(333, 10))

	// Overlapping fields share the underlying bits.
	assert.Equal(t, uint64(0b0100), b.getUint(335, 4))
	b.setUint(335, 4, 0b1010)
	assert.Equal(t, uint64(0b1010), b.getUint(335, 4))
	assert.Equal(t, uint64(0b10_1110_1001), b.getUint(333, 10))
}

func TestBitvecHighBits(t *testing.T) {
	b := newBitvec(320)
	assert.Equal(t, 320, b.len())

	assert.Equal(t, uint64(0), b.getUint(290, 5))
	b.setUint(290, 5, 31)
	assert.Equal(t, uint64(31), b.getUint(290, 5))
	b.setUint(290, 5, 21)
	assert.Equal(t, uint64(21), b.getUint(290, 5))
}

func TestBitvecWideFields(t *testing.T) {
	b := newBitvec(256)
	b.setUint(3, 64, 0xdead_beef_cafe_f00d)
	assert.Equal(t, uint64(0xdead_beef_cafe_f00d), b.getUint(3, 64))

	b.setUint(67, 64, ^uint64(0))
	assert.Equal(t, ^uint64(0), b.getUint(67, 64))
	assert.Equal(t, uint64(0xdead_beef_cafe_f00d), b.getUint(3, 64))
}

func TestBitvecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := newBitvec(1 << 16)

	// Non-overlapping fields of random widths must not interfere.
	type field struct {
		pos, width int
		value      uint64
	}
	var fields []field
	pos := 0
	for pos+64 <= b.len() {
		width := 1 + rng.Intn(64)
		value := rng.Uint64() & widthMask(width)
		fields = append(fields, field{pos: pos, width: width, value: value})
		pos += width
	}
	for _, f := range fields {
		b.setUint(f.pos, f.width, f.value)
	}
	for _, f := range fields {
		assert.Equal(t, f.value, b.getUint(f.pos, f.width))
	}

	// Setting a value wider than the field keeps only the low width bits.
	b.setUint(100, 7, ^uint64(0))
	assert.Equal(t, uint64(127), b.getUint(100, 7))
}
