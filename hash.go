package cuckoofilter

import (
	"encoding/binary"

	"github.com/aviddiviner/go-murmur"
	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"github.com/zeebo/xxh3"
)

// Hasher computes a 64-bit hash of an item. An implementation must be stable:
// the same input hashes to the same value for the lifetime of the filter, and
// every call starts from a fresh hash state. The same Hasher is used both for
// items and for re-hashing fingerprints.
type Hasher interface {
	Hash(data []byte) uint64
}

// SipHasher is the default Hasher, a keyed SipHash.
type SipHasher struct {
	key0, key1 uint64
}

func NewSipHasher(key0, key1 uint64) SipHasher {
	return SipHasher{key0: key0, key1: key1}
}

func (h SipHasher) Hash(data []byte) uint64 {
	return siphash.Hash(h.key0, h.key1, data)
}

// MurmurHasher hashes with MurmurHash64A and a fixed seed.
type MurmurHasher struct {
	seed uint64
}

func NewMurmurHasher(seed uint64) MurmurHasher {
	return MurmurHasher{seed: seed}
}

func (h MurmurHasher) Hash(data []byte) uint64 {
	return murmur.MurmurHash64A(data, h.seed)
}

// XXHasher hashes with xxHash64.
type XXHasher struct{}

func (XXHasher) Hash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// XXH3Hasher hashes with seeded XXH3.
type XXH3Hasher struct {
	seed uint64
}

func NewXXH3Hasher(seed uint64) XXH3Hasher {
	return XXH3Hasher{seed: seed}
}

func (h XXH3Hasher) Hash(data []byte) uint64 {
	return xxh3.HashSeed(data, h.seed)
}

// fingerprintHash re-hashes a fingerprint to derive the alternate bucket index.
func fingerprintHash(h Hasher, fingerprint uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], fingerprint)
	return h.Hash(buf[:])
}
