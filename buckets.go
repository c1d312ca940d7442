package cuckoofilter

import "math/rand"

// buckets is a flat array of fixed-size buckets laid out over a single bitvec.
// Each bucket holds entriesPerBucket fingerprint slots of fingerprintWidth bits.
// The bucket count is always a power of two so the index is a simple mask.
// Fingerprint 0 marks an empty slot; callers never pass 0 to the slot operations.
type buckets struct {
	fingerprintWidth int
	entriesPerBucket int
	bucketWidth      int
	indexWidth       int
	data             *bitvec
}

func next2N(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

func newBuckets(fingerprintWidth, entriesPerBucket, bucketNumHint int) *buckets {
	bucketNum := next2N(bucketNumHint)
	indexWidth := 0
	for 1<<indexWidth < bucketNum {
		indexWidth++
	}
	bucketWidth := fingerprintWidth * entriesPerBucket
	return &buckets{
		fingerprintWidth: fingerprintWidth,
		entriesPerBucket: entriesPerBucket,
		bucketWidth:      bucketWidth,
		indexWidth:       indexWidth,
		data:             newBitvec(bucketWidth << indexWidth),
	}
}

func (b *buckets) bucketNum() int {
	return 1 << b.indexWidth
}

func (b *buckets) entries() int {
	return b.bucketNum() * b.entriesPerBucket
}

func (b *buckets) bits() uint64 {
	return uint64(b.data.len())
}

// index selects a bucket from the low bits of a hash.
func (b *buckets) index(hash uint64) int {
	return int(hash & uint64(b.bucketNum()-1))
}

// fingerprint is the top fingerprintWidth bits of a hash.
func (b *buckets) fingerprint(hash uint64) uint64 {
	return hash >> (64 - b.fingerprintWidth)
}

func (b *buckets) getFingerprint(bucketIndex, entryIndex int) uint64 {
	offset := b.bucketWidth*bucketIndex + b.fingerprintWidth*entryIndex
	return b.data.getUint(offset, b.fingerprintWidth)
}

func (b *buckets) setFingerprint(bucketIndex, entryIndex int, fingerprint uint64) {
	offset := b.bucketWidth*bucketIndex + b.fingerprintWidth*entryIndex
	b.data.setUint(offset, b.fingerprintWidth, fingerprint)
}

func (b *buckets) contains(bucketIndex int, fingerprint uint64) bool {
	for i := 0; i < b.entriesPerBucket; i++ {
		if b.getFingerprint(bucketIndex, i) == fingerprint {
			return true
		}
	}
	return false
}

// tryInsert places the fingerprint into the first empty slot of the bucket.
func (b *buckets) tryInsert(bucketIndex int, fingerprint uint64) bool {
	for i := 0; i < b.entriesPerBucket; i++ {
		if b.getFingerprint(bucketIndex, i) == 0 {
			b.setFingerprint(bucketIndex, i, fingerprint)
			return true
		}
	}
	return false
}

// randomSwap exchanges the fingerprint with a uniformly chosen resident slot
// and returns the displaced fingerprint. The bucket must be full.
func (b *buckets) randomSwap(rng *rand.Rand, bucketIndex int, fingerprint uint64) uint64 {
	i := rng.Intn(b.entriesPerBucket)
	f := b.getFingerprint(bucketIndex, i)
	b.setFingerprint(bucketIndex, i, fingerprint)
	return f
}

func (b *buckets) removeFingerprint(bucketIndex int, fingerprint uint64) bool {
	for i := 0; i < b.entriesPerBucket; i++ {
		if b.getFingerprint(bucketIndex, i) == fingerprint {
			b.setFingerprint(bucketIndex, i, 0)
			return true
		}
	}
	return false
}

// forEachFingerprint visits every non-zero slot in bucket-major order.
func (b *buckets) forEachFingerprint(fn func(bucketIndex int, fingerprint uint64)) {
	for i := 0; i < b.bucketNum(); i++ {
		for j := 0; j < b.entriesPerBucket; j++ {
			if f := b.getFingerprint(i, j); f != 0 {
				fn(i, f)
			}
		}
	}
}
