package sbsim

import (
	"math"

	sberrors "github.com/jrbarlow/sbsim/errors"
	"github.com/jrbarlow/sbsim/internal/bloomfilter"
)

// noOldestSource represents "infinity" for oldest_sq_src (spec.md §4.F): no
// squash has yet been observed.
const noOldestSource = math.MaxUint64

// SimpleSquashBuffer is the single-generation Squash Buffer policy: a flat
// address set plus a scalar tracking the oldest outstanding squash source
// (spec.md §4.F). It is a direct generalization of
// SimpleSquashBuffer<Impl> in the original's squash_buffer.hh, off the
// gem5 DynInstPtr/O3CPU template parameters onto the plain Instruction
// struct and a *Stats bank.
type SimpleSquashBuffer struct {
	cfg *Config

	set         map[uint64]struct{}
	oldestSqSrc uint64
	filter      *bloomfilter.Filter // nil unless cfg.SBBacking != Ideal
	stats       *Stats
}

// NewSimpleSquashBuffer constructs a Simple Squash Buffer from cfg. A
// non-Ideal cfg.SBBacking enables the Bloom accuracy shadow described in
// spec.md §4.F; SBBacking == CountingBloom is treated identically to
// Bloom here, since the Simple policy never retires and so never needs
// counting semantics.
func NewSimpleSquashBuffer(cfg *Config) *SimpleSquashBuffer {
	sb := &SimpleSquashBuffer{
		cfg:         cfg,
		set:         make(map[uint64]struct{}),
		oldestSqSrc: noOldestSource,
		stats:       newStats(cfg),
	}
	if cfg.SBBacking != Ideal {
		filter, err := bloomfilter.NewFromElementCount(
			cfg.ProjectedElemCnt, cfg.FalsePositiveRate, cfg.Seed,
			bloomfilter.Partitioning(cfg.Partitioning), cfg.HashFamily, cfg.DoubleHash,
		)
		if err != nil {
			panic(err)
		}
		sb.filter = filter
	}
	return sb
}

// Insert adds inst.Addr to the tracked set (and to the Bloom filter, if
// enabled).
func (sb *SimpleSquashBuffer) Insert(inst Instruction) {
	sb.set[inst.Addr] = struct{}{}
	if sb.filter != nil {
		sb.filter.Add(inst.Addr)
	}
	sb.stats.SBInserts++
	sb.stats.MaxSBEntries.Observe(uint64(len(sb.set)))
}

// Check reports whether inst.Addr was previously squashed. With a Bloom
// backing enabled, the filter's answer is returned while the ground-truth
// set is consulted only to classify the result as a filter false positive
// or false negative (spec.md §4.F "Accuracy shadow").
func (sb *SimpleSquashBuffer) Check(inst Instruction) bool {
	sb.stats.SBChecks++
	_, inSet := sb.set[inst.Addr]

	if sb.filter == nil {
		if inSet {
			sb.stats.SBHits++
		} else {
			sb.stats.SBMisses++
		}
		return inSet
	}

	inFilter := sb.filter.Lookup(inst.Addr)
	switch {
	case inFilter && !inSet:
		sb.stats.FFalsePositives++
	case !inFilter && inSet:
		sb.stats.FFalseNegatives++
	}
	if inFilter {
		sb.stats.SBHits++
	} else {
		sb.stats.SBMisses++
	}
	return inFilter
}

// Squash records inst as a new potential oldest outstanding squash source.
func (sb *SimpleSquashBuffer) Squash(inst Instruction) {
	if inst.Seq < sb.oldestSqSrc {
		sb.oldestSqSrc = inst.Seq
	}
}

// Clear flushes the buffer if inst.Seq matches the tracked oldest source,
// or applies the forward-jump rule: if inst.Seq is newer than the tracked
// source, the original source was itself squashed without ever being
// cleared, so the buffer is flushed anyway and SBSeqChange is recorded.
func (sb *SimpleSquashBuffer) Clear(inst Instruction) {
	switch {
	case inst.Seq == sb.oldestSqSrc:
		sb.flush()
	case inst.Seq > sb.oldestSqSrc:
		sb.flush()
		sb.stats.SBSeqChange++
	}
}

func (sb *SimpleSquashBuffer) flush() {
	cleared := uint64(len(sb.set))
	sb.set = make(map[uint64]struct{})
	if sb.filter != nil {
		sb.filter.Clear()
	}
	sb.oldestSqSrc = noOldestSource
	sb.stats.SBClears += cleared
}

// Retire is unsupported by the Simple Squash Buffer; invoking it is a
// contract violation (spec.md §4.F).
func (sb *SimpleSquashBuffer) Retire(inst Instruction) {
	panic(sberrors.ErrRetireUnsupported)
}

// Full reports whether the tracked set has reached cfg.MaxSBSize. Bloom
// mode never reports full, since the filter itself is fixed-size
// (spec.md §4.F).
func (sb *SimpleSquashBuffer) Full() bool {
	if sb.filter != nil {
		return false
	}
	return len(sb.set) >= sb.cfg.MaxSBSize
}

// MaxSize returns the configured capacity.
func (sb *SimpleSquashBuffer) MaxSize() int { return sb.cfg.MaxSBSize }

// Stats returns the buffer's statistics bank.
func (sb *SimpleSquashBuffer) Stats() *Stats { return sb.stats }

var _ SquashBuffer = (*SimpleSquashBuffer)(nil)
