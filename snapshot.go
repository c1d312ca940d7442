package cuckoofilter

import (
	"encoding/gob"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// The hasher and rng are deliberately not part of the payload: a snapshot is
// only readable with the same hasher seed it was written with, and the caller
// must supply it again on load.

type exceptionalItemSnapshot struct {
	Fingerprint uint64
	Index       int
}

type filterSnapshot struct {
	FingerprintWidth int
	EntriesPerBucket int
	IndexWidth       int
	Bytes            []byte
	MaxKicks         int
	ItemNum          int
	Exceptional      []exceptionalItemSnapshot
}

type snapshot struct {
	InitialCapacity          int
	FalsePositiveProbability float64
	EntriesPerBucket         int
	MaxKicks                 int
	Filters                  []filterSnapshot
}

// Save writes the filter state to w.
func (s *ScalableCuckooFilter) Save(w io.Writer) error {
	snap := snapshot{
		InitialCapacity:          s.initialCapacity,
		FalsePositiveProbability: s.falsePositiveProbability,
		EntriesPerBucket:         s.entriesPerBucket,
		MaxKicks:                 s.maxKicks,
	}
	for _, f := range s.filters {
		fs := filterSnapshot{
			FingerprintWidth: f.buckets.fingerprintWidth,
			EntriesPerBucket: f.buckets.entriesPerBucket,
			IndexWidth:       f.buckets.indexWidth,
			Bytes:            f.buckets.data.bytes,
			MaxKicks:         f.maxKicks,
			ItemNum:          f.itemNum,
		}
		for _, it := range f.exceptional.items {
			fs.Exceptional = append(fs.Exceptional, exceptionalItemSnapshot{
				Fingerprint: it.fingerprint,
				Index:       it.index,
			})
		}
		snap.Filters = append(snap.Filters, fs)
	}
	return gob.NewEncoder(w).Encode(snap)
}

// Load reads a filter previously written by Save. The hasher must be the one
// the snapshot was written with; membership of previously inserted items is
// preserved. A nil hasher or rng falls back to the builder defaults.
func Load(r io.Reader, hasher Hasher, rng *rand.Rand) (*ScalableCuckooFilter, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Filters) == 0 {
		return nil, fmt.Errorf("snapshot holds no filters")
	}
	if !(snap.FalsePositiveProbability > 0 && snap.FalsePositiveProbability <= 1) ||
		snap.EntriesPerBucket <= 0 || snap.InitialCapacity < 0 || snap.MaxKicks < 0 {
		return nil, fmt.Errorf("snapshot holds an invalid configuration")
	}
	if hasher == nil {
		hasher = NewSipHasher(defaultSipKey0, defaultSipKey1)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &ScalableCuckooFilter{
		hasher:                   hasher,
		rng:                      rng,
		initialCapacity:          snap.InitialCapacity,
		falsePositiveProbability: snap.FalsePositiveProbability,
		entriesPerBucket:         snap.EntriesPerBucket,
		maxKicks:                 snap.MaxKicks,
	}
	for _, fs := range snap.Filters {
		if fs.FingerprintWidth <= 0 || fs.FingerprintWidth > 64 || fs.EntriesPerBucket <= 0 ||
			fs.IndexWidth < 0 || fs.IndexWidth > 56 {
			return nil, fmt.Errorf("snapshot holds an invalid filter geometry")
		}
		bucketWidth := fs.FingerprintWidth * fs.EntriesPerBucket
		want := (bucketWidth<<fs.IndexWidth + 7) / 8
		if len(fs.Bytes) != want {
			return nil, fmt.Errorf("snapshot bucket storage is %d bytes, want %d", len(fs.Bytes), want)
		}
		f := &cuckooFilter{
			buckets: &buckets{
				fingerprintWidth: fs.FingerprintWidth,
				entriesPerBucket: fs.EntriesPerBucket,
				bucketWidth:      bucketWidth,
				indexWidth:       fs.IndexWidth,
				data:             &bitvec{bytes: fs.Bytes},
			},
			maxKicks: fs.MaxKicks,
			itemNum:  fs.ItemNum,
		}
		for _, it := range fs.Exceptional {
			f.exceptional.items = append(f.exceptional.items, exceptionalItem{
				fingerprint: it.Fingerprint,
				index:       it.Index,
			})
		}
		s.filters = append(s.filters, f)
	}
	return s, nil
}
