// Package cuckoofilter implements a scalable cuckoo filter: an approximate
// set-membership structure that grows automatically when its current capacity
// is exhausted and can be shrunk back afterwards. It never reports a false
// negative for an item that is still inserted, and keeps the false-positive
// probability of the whole stack below the configured bound.
package cuckoofilter

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

const (
	defaultInitialCapacity  = 100_000
	defaultFalsePositive    = 0.001
	defaultEntriesPerBucket = 4
	defaultMaxKicks         = 512

	// Key of the default SipHasher. Fixed so that a snapshot written with the
	// default hasher stays readable with the default hasher.
	defaultSipKey0 = 0x6c7967656e657261
	defaultSipKey1 = 0x7465646279746573
)

// ScalableCuckooFilter composes fixed-size cuckoo filters with geometrically
// increasing capacity and geometrically decaying false-positive budget.
// Only the newest filter receives inserts; all filters are probed on lookups.
// It is not safe for concurrent mutation.
type ScalableCuckooFilter struct {
	hasher                   Hasher
	rng                      *rand.Rand
	initialCapacity          int
	falsePositiveProbability float64
	entriesPerBucket         int
	maxKicks                 int
	filters                  []*cuckooFilter
}

// Builder configures a ScalableCuckooFilter.
type Builder struct {
	initialCapacity          int
	falsePositiveProbability float64
	entriesPerBucket         int
	maxKicks                 int
	hasher                   Hasher
	rng                      *rand.Rand
}

func NewBuilder() *Builder {
	return &Builder{
		initialCapacity:          defaultInitialCapacity,
		falsePositiveProbability: defaultFalsePositive,
		entriesPerBucket:         defaultEntriesPerBucket,
		maxKicks:                 defaultMaxKicks,
	}
}

// InitialCapacity sets the estimated item count of the first filter.
func (b *Builder) InitialCapacity(n int) *Builder {
	b.initialCapacity = n
	return b
}

// FalsePositiveProbability sets the upper bound of the false-positive
// probability across the whole filter stack. Must be in (0, 1].
func (b *Builder) FalsePositiveProbability(p float64) *Builder {
	b.falsePositiveProbability = p
	return b
}

// EntriesPerBucket sets the number of fingerprint slots per bucket.
func (b *Builder) EntriesPerBucket(n int) *Builder {
	b.entriesPerBucket = n
	return b
}

// MaxKicks sets the relocation limit of one insertion. Past it the filter is
// considered nearly full and the stack grows.
func (b *Builder) MaxKicks(n int) *Builder {
	b.maxKicks = n
	return b
}

// Hasher replaces the default keyed SipHash.
func (b *Builder) Hasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// Rng replaces the random source used for kick selection.
func (b *Builder) Rng(rng *rand.Rand) *Builder {
	b.rng = rng
	return b
}

func (b *Builder) Build() (*ScalableCuckooFilter, error) {
	if !(b.falsePositiveProbability > 0 && b.falsePositiveProbability <= 1) {
		return nil, errors.New("false positive probability must be in (0, 1]")
	}
	if b.initialCapacity < 0 {
		return nil, errors.New("initial capacity must not be negative")
	}
	if b.entriesPerBucket <= 0 {
		return nil, errors.New("entries per bucket must be positive")
	}
	if b.maxKicks < 0 {
		return nil, errors.New("max kicks must not be negative")
	}

	hasher := b.hasher
	if hasher == nil {
		hasher = NewSipHasher(defaultSipKey0, defaultSipKey1)
	}
	rng := b.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &ScalableCuckooFilter{
		hasher:                   hasher,
		rng:                      rng,
		initialCapacity:          b.initialCapacity,
		falsePositiveProbability: b.falsePositiveProbability,
		entriesPerBucket:         b.entriesPerBucket,
		maxKicks:                 b.maxKicks,
	}
	s.grow()
	return s, nil
}

// New builds a filter with the given capacity hint and false-positive bound,
// keeping the defaults for everything else.
func New(initialCapacity int, falsePositiveProbability float64) (*ScalableCuckooFilter, error) {
	return NewBuilder().
		InitialCapacity(initialCapacity).
		FalsePositiveProbability(falsePositiveProbability).
		Build()
}

// grow appends a filter with twice the capacity and half the probability
// budget of the previous one, so the union stays below the configured bound:
// sum(p / 2^(k+1)) <= p.
func (s *ScalableCuckooFilter) grow() {
	k := len(s.filters)
	capacity := s.initialCapacity << k
	probability := s.falsePositiveProbability / math.Pow(2, float64(k+1))
	width := int(math.Ceil(math.Log2(1/probability) + math.Log2(float64(2*s.entriesPerBucket))))
	if width > 64 {
		width = 64
	}
	s.filters = append(s.filters, newCuckooFilter(width, s.entriesPerBucket, capacity, s.maxKicks))
}

// Insert adds item to the filter. Duplicate inserts are counted separately;
// callers wanting set semantics should check Contains first.
func (s *ScalableCuckooFilter) Insert(item []byte) {
	itemHash := s.hasher.Hash(item)
	last := s.filters[len(s.filters)-1]
	last.insert(s.hasher, s.rng, itemHash)
	if last.isNearlyFull() {
		s.grow()
	}
}

// Contains reports whether item may have been inserted. False positives are
// possible within the configured probability; false negatives are not.
func (s *ScalableCuckooFilter) Contains(item []byte) bool {
	itemHash := s.hasher.Hash(item)
	for _, f := range s.filters {
		if f.contains(s.hasher, itemHash) {
			return true
		}
	}
	return false
}

// Remove deletes one previously inserted occurrence of item and reports
// whether one was found.
func (s *ScalableCuckooFilter) Remove(item []byte) bool {
	itemHash := s.hasher.Hash(item)
	for _, f := range s.filters {
		if f.remove(s.hasher, itemHash) {
			return true
		}
	}
	return false
}

// ShrinkToFit rebuilds each filter at the smallest size that holds its live
// items. The filter list itself is not compacted: earlier filters use
// different fingerprint widths and cannot be merged losslessly.
func (s *ScalableCuckooFilter) ShrinkToFit() {
	for _, f := range s.filters {
		f.shrinkToFit(s.hasher, s.rng)
	}
}

// Len is the number of inserted items that have not been removed.
func (s *ScalableCuckooFilter) Len() int {
	n := 0
	for _, f := range s.filters {
		n += f.len()
	}
	return n
}

func (s *ScalableCuckooFilter) IsEmpty() bool {
	return s.Len() == 0
}

// Capacity is the number of fingerprint slots across all filters plus the
// entries held in their exceptional lists.
func (s *ScalableCuckooFilter) Capacity() int {
	n := 0
	for _, f := range s.filters {
		n += f.capacity()
	}
	return n
}

// Bits is the memory used by the filter, in bits.
func (s *ScalableCuckooFilter) Bits() uint64 {
	var n uint64
	for _, f := range s.filters {
		n += f.bits()
	}
	return n
}

func (s *ScalableCuckooFilter) InitialCapacity() int {
	return s.initialCapacity
}

func (s *ScalableCuckooFilter) FalsePositiveProbability() float64 {
	return s.falsePositiveProbability
}

func (s *ScalableCuckooFilter) EntriesPerBucket() int {
	return s.entriesPerBucket
}

func (s *ScalableCuckooFilter) MaxKicks() int {
	return s.maxKicks
}
