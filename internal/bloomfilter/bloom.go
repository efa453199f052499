// Package bloomfilter implements the standard and counting Bloom filter
// variants (spec.md §4.D/§4.E), layered on internal/bitvec storage and
// internal/xhash k-wise hashing. Sizing follows the textbook optimal
// formulas; the actual bit/counter math is delegated entirely to bitvec,
// mirroring the original's delegation to bf::bitvector / bf::counter_vector
// from its own abstract bloom_filter base (original_source/src/cpu/o3/
// bloom_filter_libbf.hh).
package bloomfilter

import (
	"math"

	sberrors "github.com/jrbarlow/sbsim/errors"
	"github.com/jrbarlow/sbsim/internal/bitvec"
	"github.com/jrbarlow/sbsim/internal/xhash"
)

// Partitioning selects how the m available cells are distributed across the
// k hash digests (spec.md §4.D "Partitioning").
type Partitioning int

const (
	// Shared indexes all k digests, modulo m, into one common array.
	Shared Partitioning = iota
	// Partitioned splits the array into k disjoint slices of size m/k, one
	// per digest position, avoiding inter-position collisions.
	Partitioned
)

// Params holds the derived (m, k) sizing for a Bloom filter built from a
// projected element count and target false positive probability.
type Params struct {
	M    int
	K    int
	Seed uint64
}

// DeriveParams computes the optimal bit count m and hash count k for n
// projected elements and a target false positive probability p, using
// m = -n*ln(p)/(ln 2)^2 and k = (m/n)*ln 2 (spec.md §4.D); m is rounded up
// and k to the nearest integer, and both are floored at 1.
func DeriveParams(n int, p float64, seed uint64) (Params, error) {
	if n <= 0 {
		return Params{}, sberrors.ErrZeroProjectedElements
	}
	if p <= 0 || p >= 1 {
		return Params{}, sberrors.ErrInvalidFalsePositiveRate
	}
	ln2 := math.Ln2
	m := int(math.Ceil(-float64(n) * math.Log(p) / (ln2 * ln2)))
	if m < 1 {
		m = 1
	}
	k := int(math.Round((float64(m) / float64(n)) * ln2))
	if k < 1 {
		k = 1
	}
	return Params{M: m, K: k, Seed: seed}, nil
}

// Filter is a standard (non-counting) Bloom filter: m one-bit cells indexed
// by k hash digests.
type Filter struct {
	bits   *bitvec.BitVector
	hasher xhash.Hasher
	params Params
	part   Partitioning
}

// New constructs a standard Bloom filter from explicit parameters.
func New(params Params, part Partitioning, hasher xhash.Hasher) *Filter {
	if params.M <= 0 {
		panic("bloomfilter: m must be positive")
	}
	return &Filter{
		bits:   bitvec.New(params.M),
		hasher: hasher,
		params: params,
		part:   part,
	}
}

// NewFromElementCount derives (m, k) from (n, p, seed) and constructs a
// standard Bloom filter over a hasher of the given family, matching spec.md §4.D's
// construction-from-parameters contract.
func NewFromElementCount(n int, p float64, seed uint64, part Partitioning, family xhash.HashFamily, double bool) (*Filter, error) {
	params, err := DeriveParams(n, p, seed)
	if err != nil {
		return nil, err
	}
	hasher := xhash.MakeHasherFamily(params.K, seed, double, family)
	return New(params, part, hasher), nil
}

// indices maps key's k digests onto cell positions according to f's
// partitioning mode.
func (f *Filter) indices(key uint64) []int {
	digests := f.hasher.Hash(key)
	idx := make([]int, len(digests))
	switch f.part {
	case Shared:
		for i, d := range digests {
			idx[i] = int(d % uint64(f.params.M))
		}
	case Partitioned:
		slice := f.params.M / len(digests)
		if slice == 0 {
			slice = 1
		}
		for i, d := range digests {
			idx[i] = i*slice + int(d%uint64(slice))
		}
	default:
		panic("bloomfilter: unknown partitioning mode")
	}
	return idx
}

// Add sets every cell indexed by key's digests.
func (f *Filter) Add(key uint64) {
	for _, i := range f.indices(key) {
		f.bits.Set(i, true)
	}
}

// Lookup reports whether every cell indexed by key's digests is set, i.e.
// whether key is (possibly falsely) a member.
func (f *Filter) Lookup(key uint64) bool {
	for _, i := range f.indices(key) {
		if !f.bits.Get(i) {
			return false
		}
	}
	return true
}

// Clear zeros every cell.
func (f *Filter) Clear() {
	f.bits.Reset()
}

// M returns the number of cells in the filter.
func (f *Filter) M() int { return f.params.M }

// K returns the number of hash digests per key.
func (f *Filter) K() int { return f.params.K }
