package cuckoofilter

import "math/rand"

// cuckooFilter is one fixed-capacity filter with (1,2)-partial-key hashing.
// The two candidate buckets of a fingerprint f are related by
// i1 = index(i0 XOR hash(f)), so a stored entry is findable from either side.
// Fingerprints that cannot live in the bucket array (value 0, or displaced
// past maxKicks) are parked in the exceptional list instead.
type cuckooFilter struct {
	buckets     *buckets
	maxKicks    int
	exceptional exceptionalItems
	itemNum     int
}

func newCuckooFilter(fingerprintWidth, entriesPerBucket, itemNumHint, maxKicks int) *cuckooFilter {
	bucketNumHint := (itemNumHint + entriesPerBucket - 1) / entriesPerBucket
	return &cuckooFilter{
		buckets:  newBuckets(fingerprintWidth, entriesPerBucket, bucketNumHint),
		maxKicks: maxKicks,
	}
}

func (c *cuckooFilter) len() int {
	return c.itemNum
}

func (c *cuckooFilter) capacity() int {
	return c.buckets.entries() + c.exceptional.len()
}

func (c *cuckooFilter) bits() uint64 {
	return c.buckets.bits() + c.exceptional.bits()
}

// isNearlyFull reports whether an eviction loop has given up at least once.
// The owner is expected to stop inserting here and grow.
func (c *cuckooFilter) isNearlyFull() bool {
	return c.exceptional.containsKickedOutEntries()
}

func (c *cuckooFilter) candidates(h Hasher, itemHash uint64) (fingerprint uint64, i0, i1 int) {
	fingerprint = c.buckets.fingerprint(itemHash)
	i0 = c.buckets.index(itemHash)
	i1 = c.buckets.index(uint64(i0) ^ fingerprintHash(h, fingerprint))
	return fingerprint, i0, i1
}

func (c *cuckooFilter) contains(h Hasher, itemHash uint64) bool {
	fingerprint, i0, i1 := c.candidates(h, itemHash)
	if c.exceptional.contains(i0, i1, fingerprint) {
		return true
	}
	return fingerprint != 0 &&
		(c.buckets.contains(i0, fingerprint) || c.buckets.contains(i1, fingerprint))
}

// insert records one occurrence of the item. Duplicates are kept as separate
// entries so that remove undoes exactly one insert.
func (c *cuckooFilter) insert(h Hasher, rng *rand.Rand, itemHash uint64) {
	fingerprint, i0, i1 := c.candidates(h, itemHash)
	c.itemNum++
	if fingerprint == 0 {
		c.exceptional.insert(i0, i1, 0)
		return
	}
	c.insertFingerprint(h, rng, i0, i1, fingerprint)
}

func (c *cuckooFilter) insertFingerprint(h Hasher, rng *rand.Rand, i0, i1 int, fingerprint uint64) {
	if c.buckets.tryInsert(i0, fingerprint) || c.buckets.tryInsert(i1, fingerprint) {
		return
	}

	i, prev := i0, i1
	if rng.Intn(2) == 0 {
		i, prev = i1, i0
	}
	for k := 0; k < c.maxKicks; k++ {
		fingerprint = c.buckets.randomSwap(rng, i, fingerprint)
		prev = i
		i = c.buckets.index(uint64(i) ^ fingerprintHash(h, fingerprint))
		if c.buckets.tryInsert(i, fingerprint) {
			return
		}
	}
	c.exceptional.insert(prev, i, fingerprint)
}

// remove deletes one occurrence of the item's fingerprint. It is a
// fingerprint-level operation: another item sharing the fingerprint keeps the
// remaining entry visible.
func (c *cuckooFilter) remove(h Hasher, itemHash uint64) bool {
	fingerprint, i0, i1 := c.candidates(h, itemHash)
	ok := c.exceptional.remove(i0, i1, fingerprint)
	if !ok && fingerprint != 0 {
		ok = c.buckets.removeFingerprint(i0, fingerprint) ||
			c.buckets.removeFingerprint(i1, fingerprint)
	}
	if ok {
		c.itemNum--
	}
	return ok
}

// shrinkToFit rebuilds the filter at the smallest power-of-two bucket count
// that holds the live items. The original items are gone, so the stored
// fingerprints are replayed as-is: a slot at bucket i lands at new.index(i),
// which preserves the candidate-pair relation because the new bucket count
// divides the old one.
func (c *cuckooFilter) shrinkToFit(h Hasher, rng *rand.Rand) {
	next := newCuckooFilter(c.buckets.fingerprintWidth, c.buckets.entriesPerBucket, c.itemNum, c.maxKicks)
	if next.buckets.bucketNum() >= c.buckets.bucketNum() {
		c.exceptional.shrinkToFit()
		return
	}

	c.buckets.forEachFingerprint(func(bucketIndex int, fingerprint uint64) {
		i0 := next.buckets.index(uint64(bucketIndex))
		i1 := next.buckets.index(uint64(i0) ^ fingerprintHash(h, fingerprint))
		next.insertFingerprint(h, rng, i0, i1, fingerprint)
	})
	for _, it := range c.exceptional.items {
		i0 := next.buckets.index(uint64(it.index))
		i1 := next.buckets.index(uint64(i0) ^ fingerprintHash(h, it.fingerprint))
		if it.fingerprint == 0 {
			next.exceptional.insert(i0, i1, 0)
		} else {
			next.insertFingerprint(h, rng, i0, i1, it.fingerprint)
		}
	}
	next.itemNum = c.itemNum
	next.exceptional.shrinkToFit()
	*c = *next
}
