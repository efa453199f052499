// Package xhash implements the H3 hash family and the k-wise hasher
// policies layered on top of it (spec.md §4.B, §4.C), plus alternative
// pluggable hash backends drawn from the wider hashing ecosystem.
package xhash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	sberrors "github.com/jrbarlow/sbsim/errors"
)

// HashFunc maps a 64-bit key to a 64-bit digest.
type HashFunc func(key uint64) uint64

// HashFamily selects the underlying HashFunc implementation. H3Family is
// the family the original SB uses throughout (default_hash_function); the
// others let a Bloom filter or hasher policy be built on a general-purpose
// ecosystem hash instead, without changing the k-wise combination logic.
type HashFamily int

const (
	H3Family HashFamily = iota
	XXHashFamily
	Murmur3Family
	XXH3Family
)

// h3KeyBytes is the byte span given to the H3 table for an 8-byte uint64
// key; it exactly covers the key with no slack.
const h3KeyBytes = 8

func keyBytes(key uint64) [8]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return buf
}

// NewH3HashFunc returns a HashFunc backed by an H3 table seeded with seed.
func NewH3HashFunc(seed uint64) HashFunc {
	h := NewH3(seed, h3KeyBytes)
	return func(key uint64) uint64 {
		buf := keyBytes(key)
		v, err := h.Hash(buf[:], 0)
		if err != nil {
			// buf always fits within the table's byte span.
			panic(err)
		}
		return v
	}
}

// NewXXHashFunc returns a HashFunc backed by xxHash64, mixed with seed by
// prefixing it to the key bytes (cespare/xxhash/v2 exposes no seeded
// entrypoint).
func NewXXHashFunc(seed uint64) HashFunc {
	return func(key uint64) uint64 {
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[0:8], seed)
		binary.LittleEndian.PutUint64(buf[8:16], key)
		return xxhash.Sum64(buf[:])
	}
}

// NewMurmur3HashFunc returns a HashFunc backed by MurmurHash3 x64, seeded
// natively via Sum64WithSeed.
func NewMurmur3HashFunc(seed uint64) HashFunc {
	s32 := uint32(seed) ^ uint32(seed>>32)
	return func(key uint64) uint64 {
		buf := keyBytes(key)
		return murmur3.Sum64WithSeed(buf[:], s32)
	}
}

// NewXXH3HashFunc returns a HashFunc backed by XXH3-64, seeded natively.
func NewXXH3HashFunc(seed uint64) HashFunc {
	return func(key uint64) uint64 {
		buf := keyBytes(key)
		return xxh3.HashSeed(buf[:], seed)
	}
}

func newFamilyHashFunc(family HashFamily, seed uint64) HashFunc {
	switch family {
	case H3Family:
		return NewH3HashFunc(seed)
	case XXHashFamily:
		return NewXXHashFunc(seed)
	case Murmur3Family:
		return NewMurmur3HashFunc(seed)
	case XXH3Family:
		return NewXXH3HashFunc(seed)
	default:
		panic("xhash: unknown hash family")
	}
}

// Hasher hashes a key k times, producing k digests.
type Hasher interface {
	Hash(key uint64) []uint64
	K() int
}

// independentHasher owns k independently-seeded hash functions.
type independentHasher struct {
	fns []HashFunc
}

func (h *independentHasher) K() int { return len(h.fns) }

func (h *independentHasher) Hash(key uint64) []uint64 {
	d := make([]uint64, len(h.fns))
	for i, fn := range h.fns {
		d[i] = fn(key)
	}
	return d
}

// doubleHasher hashes a key twice and derives k digests as linear
// combinations h1 + i*h2, avoiding the cost of constructing k independent
// hash functions when k is large (spec.md §4.C).
type doubleHasher struct {
	k      int
	h1, h2 HashFunc
}

func (h *doubleHasher) K() int { return h.k }

func (h *doubleHasher) Hash(key uint64) []uint64 {
	d1 := h.h1(key)
	d2 := h.h2(key)
	d := make([]uint64, h.k)
	for i := range d {
		d[i] = d1 + uint64(i)*d2
	}
	return d
}

// MakeHasher builds a Hasher over k H3-backed hash functions whose seeds are
// all drawn from a single PRNG seeded by seed, so that (k, seed, double)
// alone reproduces a configuration (spec.md §4.C). This is the exact
// counterpart of the original's bf::make_hasher.
func MakeHasher(k int, seed uint64, double bool) Hasher {
	return MakeHasherFamily(k, seed, double, H3Family)
}

// MakeHasherFamily is MakeHasher generalized over the hash backend, letting
// a Bloom filter or Squash Buffer draw its k-wise hashing from any of the
// pluggable HashFamily implementations rather than only H3.
func MakeHasherFamily(k int, seed uint64, double bool, family HashFamily) Hasher {
	if k <= 0 {
		panic(sberrors.ErrZeroHashCount)
	}
	prng := newMinstd0(seed)
	if double {
		h1 := newFamilyHashFunc(family, uint64(prng.next()))
		h2 := newFamilyHashFunc(family, uint64(prng.next()))
		return &doubleHasher{k: k, h1: h1, h2: h2}
	}
	fns := make([]HashFunc, k)
	for i := range fns {
		fns[i] = newFamilyHashFunc(family, uint64(prng.next()))
	}
	return &independentHasher{fns: fns}
}
