package bloomfilter

import (
	"github.com/jrbarlow/sbsim/internal/bitvec"
	"github.com/jrbarlow/sbsim/internal/xhash"
)

// CountingFilter is a counting Bloom filter: m fixed-width saturating
// counters indexed by k hash digests, supporting remove/decrement in
// addition to the standard filter's add/lookup/clear (spec.md §4.E).
//
// A saturated cell has lost the information of how far past its ceiling it
// was pushed, so the first Remove after saturation cannot be trusted to
// reflect a real decrement: it is defined as a no-op, and only subsequent
// removes actually decrement (spec.md §8 scenario 4, §9 Open Questions).
// saturated tracks, per cell, whether that one no-op debt is still owed.
type CountingFilter struct {
	counters  *bitvec.CounterVector
	saturated []bool
	hasher    xhash.Hasher
	params    Params
	part      Partitioning
}

// NewCounting constructs a counting Bloom filter with params.M counters of
// the given width in bits.
func NewCounting(params Params, width int, part Partitioning, hasher xhash.Hasher) *CountingFilter {
	if params.M <= 0 {
		panic("bloomfilter: m must be positive")
	}
	return &CountingFilter{
		counters:  bitvec.NewCounterVector(params.M, width),
		saturated: make([]bool, params.M),
		hasher:    hasher,
		params:    params,
		part:      part,
	}
}

// NewCountingFromElementCount derives (m, k) from (n, p, seed) and
// constructs a counting Bloom filter of the given counter width over a
// hasher of the given family.
func NewCountingFromElementCount(n int, p float64, seed uint64, width int, part Partitioning, family xhash.HashFamily, double bool) (*CountingFilter, error) {
	params, err := DeriveParams(n, p, seed)
	if err != nil {
		return nil, err
	}
	hasher := xhash.MakeHasherFamily(params.K, seed, double, family)
	return NewCounting(params, width, part, hasher), nil
}

func (f *CountingFilter) indices(key uint64) []int {
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

// Add increments every cell indexed by key's digests by one. A cell that
// reaches its maximum representable value, or that ripple-carries past it,
// is reported as overflowed and owes one saturation-debt remove (spec.md
// §4.G "insert policy", SBCounterOverflows).
func (f *CountingFilter) Add(key uint64) (overflowed bool) {
	max := f.counters.Max()
	for _, i := range f.indices(key) {
		ok := f.counters.Increment(i, 1)
		if !ok || f.counters.Count(i) == max {
			f.saturated[i] = true
			overflowed = true
		}
	}
	return overflowed
}

// Lookup returns the minimum counter value across key's digest indices;
// membership is present iff the result is greater than zero (spec.md §4.D).
func (f *CountingFilter) Lookup(key uint64) uint64 {
	idx := f.indices(key)
	min := f.counters.Count(idx[0])
	for _, i := range idx[1:] {
		if v := f.counters.Count(i); v < min {
			min = v
		}
	}
	return min
}

// Remove decrements every cell indexed by key's digests by one, clamped at
// zero: a cell already at zero is left unchanged rather than underflowing
// (spec.md §4.D). A cell still owing its saturation debt (see CountingFilter
// doc) absorbs this call as a no-op instead of decrementing, and clears the
// debt so the next Remove decrements normally. Removing a key that was
// never added is legal but may depress other keys sharing a cell.
func (f *CountingFilter) Remove(key uint64) {
	for _, i := range f.indices(key) {
		if f.saturated[i] {
			f.saturated[i] = false
			continue
		}
		if f.counters.Count(i) == 0 {
			continue
		}
		f.counters.Decrement(i, 1)
	}
}

// Clear zeros every counter and any outstanding saturation debt.
func (f *CountingFilter) Clear() {
	f.counters.Clear()
	for i := range f.saturated {
		f.saturated[i] = false
	}
}

// M returns the number of counters in the filter.
func (f *CountingFilter) M() int { return f.params.M }

// K returns the number of hash digests per key.
func (f *CountingFilter) K() int { return f.params.K }

// MaxCounter returns the saturation value of a single counter.
func (f *CountingFilter) MaxCounter() uint64 { return f.counters.Max() }
