package cuckoofilter

import "sort"

// exceptionalItem is a fingerprint the bucket array could not represent:
// either the fingerprint is 0 (reserved as the empty-slot marker) or the
// eviction loop ran out of kicks. index is min(i0, i1), which canonicalises
// the unordered candidate-bucket pair.
type exceptionalItem struct {
	fingerprint uint64
	index       int
}

// exceptionalItems keeps its entries sorted by (fingerprint, index) ascending,
// so zero-fingerprint markers sort first and the last entry tells whether any
// kicked-out fingerprint is present.
type exceptionalItems struct {
	items []exceptionalItem
}

func canonicalIndex(i0, i1 int) int {
	if i1 < i0 {
		return i1
	}
	return i0
}

func (e *exceptionalItems) search(fingerprint uint64, index int) int {
	return sort.Search(len(e.items), func(k int) bool {
		it := e.items[k]
		if it.fingerprint != fingerprint {
			return it.fingerprint > fingerprint
		}
		return it.index >= index
	})
}

func (e *exceptionalItems) insert(i0, i1 int, fingerprint uint64) {
	idx := canonicalIndex(i0, i1)
	k := e.search(fingerprint, idx)
	e.items = append(e.items, exceptionalItem{})
	copy(e.items[k+1:], e.items[k:])
	e.items[k] = exceptionalItem{fingerprint: fingerprint, index: idx}
}

func (e *exceptionalItems) contains(i0, i1 int, fingerprint uint64) bool {
	idx := canonicalIndex(i0, i1)
	k := e.search(fingerprint, idx)
	return k < len(e.items) && e.items[k].fingerprint == fingerprint && e.items[k].index == idx
}

func (e *exceptionalItems) remove(i0, i1 int, fingerprint uint64) bool {
	idx := canonicalIndex(i0, i1)
	k := e.search(fingerprint, idx)
	if k >= len(e.items) || e.items[k].fingerprint != fingerprint || e.items[k].index != idx {
		return false
	}
	e.items = append(e.items[:k], e.items[k+1:]...)
	return true
}

// containsKickedOutEntries reports whether any entry came from an exhausted
// eviction loop. Zero-fingerprint markers sort first, so checking the last
// entry is enough.
func (e *exceptionalItems) containsKickedOutEntries() bool {
	return len(e.items) > 0 && e.items[len(e.items)-1].fingerprint != 0
}

func (e *exceptionalItems) len() int {
	return len(e.items)
}

// bits is the memory held by the backing slice, in bits.
func (e *exceptionalItems) bits() uint64 {
	return uint64(cap(e.items)) * 128
}

func (e *exceptionalItems) shrinkToFit() {
	if cap(e.items) == len(e.items) {
		return
	}
	items := make([]exceptionalItem, len(e.items))
	copy(items, e.items)
	e.items = items
}
