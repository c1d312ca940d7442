package cuckoofilter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketsBasicOps(t *testing.T) {
	b := newBuckets(8, 4, 1000)
	assert.Equal(t, 1024, b.bucketNum())
	assert.Equal(t, 4096, b.entries())
	assert.Equal(t, uint64(1024*4*8), b.bits())

	for i := uint64(0); i < 4; i++ {
		assert.False(t, b.contains(333, 100+i))
		assert.True(t, b.tryInsert(333, 100+i))
		assert.True(t, b.contains(333, 100+i))
	}
	assert.False(t, b.tryInsert(333, 104)) // full

	rng := rand.New(rand.NewSource(1))
	old := b.randomSwap(rng, 333, 104)
	assert.True(t, old >= 100 && old < 104)
	assert.True(t, b.contains(333, 104))
	assert.False(t, b.contains(333, old))
}

func TestBucketsHashDerivations(t *testing.T) {
	b := newBuckets(8, 4, 1000)

	hash := uint64(0xab00_0000_0000_0000 | 0x2a5)
	assert.Equal(t, uint64(0xab), b.fingerprint(hash))
	assert.Equal(t, 0x2a5, b.index(hash))

	// The index masks to the bucket count.
	assert.Equal(t, 0, b.index(1<<10))
}

func TestBucketsRemoveFingerprint(t *testing.T) {
	b := newBuckets(8, 4, 10)

	assert.True(t, b.tryInsert(3, 7))
	assert.True(t, b.tryInsert(3, 7))
	assert.False(t, b.removeFingerprint(3, 9))
	assert.True(t, b.removeFingerprint(3, 7))
	assert.True(t, b.contains(3, 7)) // the second copy survives
	assert.True(t, b.removeFingerprint(3, 7))
	assert.False(t, b.contains(3, 7))
}

func TestBucketsForEachFingerprint(t *testing.T) {
	b := newBuckets(8, 2, 4)

	assert.True(t, b.tryInsert(0, 11))
	assert.True(t, b.tryInsert(2, 22))
	assert.True(t, b.tryInsert(2, 33))
	assert.True(t, b.tryInsert(3, 44))
	// Punch a hole so the scan has to skip an empty leading slot.
	assert.True(t, b.removeFingerprint(2, 22))

	type entry struct {
		bucket int
		f      uint64
	}
	var got []entry
	b.forEachFingerprint(func(i int, f uint64) {
		got = append(got, entry{bucket: i, f: f})
	})
	assert.Equal(t, []entry{{0, 11}, {2, 33}, {3, 44}}, got)
}

func TestBucketsTinyHint(t *testing.T) {
	b := newBuckets(14, 4, 0)
	assert.Equal(t, 1, b.bucketNum())
	assert.Equal(t, uint64(56), b.bits())
}
