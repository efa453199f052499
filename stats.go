package sbsim

// histogramBuckets is the fixed bucket count spec.md §6 requires for the
// MaxSBEntries and activeRecords distributions ("histograms with a small,
// fixed bucket count").
const histogramBuckets = 8

// Histogram is a fixed-bucket-count distribution over [0, max], recording
// how often an observed value falls in each of histogramBuckets equal-width
// buckets.
type Histogram struct {
	max     uint64
	buckets [histogramBuckets]uint64
}

// NewHistogram returns a zeroed histogram over [0, max].
func NewHistogram(max uint64) *Histogram {
	return &Histogram{max: max}
}

// Observe records one occurrence of value.
func (h *Histogram) Observe(value uint64) {
	if h.max == 0 {
		h.buckets[0]++
		return
	}
	idx := int(value * histogramBuckets / (h.max + 1))
	if idx >= histogramBuckets {
		idx = histogramBuckets - 1
	}
	h.buckets[idx]++
}

// Buckets returns a copy of the bucket counts.
func (h *Histogram) Buckets() [histogramBuckets]uint64 { return h.buckets }

// Stats is the read-only counter bank every Squash Buffer exposes to its
// caller (spec.md §6 "SB → caller").
type Stats struct {
	SBChecks           uint64
	SBClears           uint64
	SBInserts          uint64
	SBHits             uint64
	SBMisses           uint64
	SBOverflows        uint64
	SBSeqChange        uint64
	SBRetireDeletions  uint64
	SBCounterOverflows uint64
	FFalsePositives    uint64
	FFalseNegatives    uint64

	// CFFRandReplace is carried for interface completeness with the
	// original's BaseSquashBuffer, which declares it but wires no
	// increment site in either concrete policy (spec.md §5 supplemented
	// feature #1). No code in this package increments it.
	CFFRandReplace uint64

	MaxSBEntries  *Histogram
	ActiveRecords *Histogram
}

// newStats builds a Stats bank with histograms scaled to cfg's size caps.
func newStats(cfg *Config) *Stats {
	return &Stats{
		MaxSBEntries:  NewHistogram(uint64(cfg.MaxSBSize)),
		ActiveRecords: NewHistogram(uint64(cfg.ActiveRecords)),
	}
}
