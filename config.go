package sbsim

import "github.com/jrbarlow/sbsim/internal/xhash"

// HWType selects the hardware-level response to a detected replay
// (spec.md §4.I, §6).
type HWType int

const (
	// Unsafe takes no mitigating action; replay detection is advisory only.
	Unsafe HWType = iota
	// Fence stalls the replaying instruction until its source retires.
	Fence
	// FenceAll stalls every instruction in the thread until the source
	// retires.
	FenceAll
)

// ReplayDetectionMode selects which backing policy drives replay detection.
type ReplayDetectionMode int

const (
	NoDetect ReplayDetectionMode = iota
	Counter
	Buffer
	Epoch
)

// ThreatPoint selects the pipeline stage replay detection is evaluated at.
type ThreatPoint int

const (
	Issue ThreatPoint = iota
	Exec
)

// SBStruct selects the backing structure an Epoch Squash Buffer uses to
// store per-epoch squash records (spec.md §4.G).
type SBStruct int

const (
	Ideal SBStruct = iota
	Bloom
	CountingBloom
)

// EpochScale labels the granularity a caller assigns to Instruction.Epoch
// values. The core SB is granularity-agnostic — it only ever observes
// already-assigned epoch numbers — so this value is consumed solely by
// synthetic trace generation (cmd/sbtrace), never by SquashBuffer logic
// (spec.md §5 SUPPLEMENTED FEATURES #2).
type EpochScale int

const (
	EpochInvalid EpochScale = iota
	EpochIteration
	EpochLoop
	EpochRoutine
)

// Config is the single read-mostly record enumerating every tunable
// consumed by the SB components and the counter cache (spec.md §4.I). It is
// built once via NewConfig and is immutable thereafter; every component
// that needs it receives a *Config by value semantics of a pointer to an
// already-finished record, never a builder.
type Config struct {
	HW              HWType
	ReplayDetection ReplayDetectionMode
	Threat          ThreatPoint
	SBBacking       SBStruct
	EpochGranularity EpochScale

	MaxInsts        int
	MaxReplays      int
	MaxSBSize       int
	ProjectedElemCnt int
	FalsePositiveRate float64
	EpochSize       int
	DeleteOnRetire  bool
	ActiveRecords   int
	CheckAllRecords bool
	CounterSize     int

	HashFamily  xhash.HashFamily
	DoubleHash  bool
	Seed        uint64
	Partitioning int // bloomfilter.Partitioning, held as int

	CCAssoc       int
	CCSets        int
	CCMissLatency int
	CCIdeal       bool
	TicksPerCycle int

	HasLowerBound bool
	LowerSeqNum   uint64
	HasUpperBound bool
	UpperSeqNum   uint64
}

// Option configures a Config under construction, following the teacher's
// functional-options convention (builder_options.go's BuildOption).
type Option func(*Config)

// defaultConfig mirrors the original's CustomConfigs defaults and the
// TICKS_PER_CYCLE = 500 macro in global_utils.hh.
func defaultConfig() *Config {
	return &Config{
		HW:              Unsafe,
		ReplayDetection: NoDetect,
		Threat:          Issue,
		SBBacking:       Ideal,
		EpochGranularity: EpochInvalid,

		MaxSBSize:         1024,
		ProjectedElemCnt:  1024,
		FalsePositiveRate: 0.01,
		EpochSize:         1,
		ActiveRecords:     4,
		CounterSize:       8,

		HashFamily: xhash.H3Family,
		Seed:       0x5bed5bed,

		CCAssoc:       4,
		CCSets:        64,
		CCMissLatency: 10,
		TicksPerCycle: 500,
	}
}

// NewConfig builds an immutable Config, applying opts in order over
// sane defaults.
func NewConfig(opts ...Option) *Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHWType sets the hardware-level replay response.
func WithHWType(hw HWType) Option {
	return func(c *Config) { c.HW = hw }
}

// WithReplayDetection sets the replay-detection policy.
func WithReplayDetection(mode ReplayDetectionMode) Option {
	return func(c *Config) { c.ReplayDetection = mode }
}

// WithThreatPoint sets the pipeline stage replay detection is evaluated at.
func WithThreatPoint(tp ThreatPoint) Option {
	return func(c *Config) { c.Threat = tp }
}

// WithSBBacking selects the Epoch Squash Buffer's backing structure.
func WithSBBacking(s SBStruct) Option {
	return func(c *Config) { c.SBBacking = s }
}

// WithEpochGranularity records the caller's intended epoch scale.
func WithEpochGranularity(scale EpochScale) Option {
	return func(c *Config) { c.EpochGranularity = scale }
}

// WithMaxSBSize caps the Simple Squash Buffer's tracked-address set.
func WithMaxSBSize(n int) Option {
	return func(c *Config) { c.MaxSBSize = n }
}

// WithProjectedElemCnt drives Bloom (m, k) sizing.
func WithProjectedElemCnt(n int) Option {
	return func(c *Config) { c.ProjectedElemCnt = n }
}

// WithFalsePositiveRate drives Bloom (m, k) sizing.
func WithFalsePositiveRate(p float64) Option {
	return func(c *Config) { c.FalsePositiveRate = p }
}

// WithEpochSize sets the instruction count per epoch for synthetic trace
// generation.
func WithEpochSize(n int) Option {
	return func(c *Config) { c.EpochSize = n }
}

// WithDeleteOnRetire enables retirement-driven decrement on a
// counting-filter-capable Epoch Squash Buffer.
func WithDeleteOnRetire(enable bool) Option {
	return func(c *Config) { c.DeleteOnRetire = enable }
}

// WithActiveRecords caps the number of simultaneously tracked epochs.
func WithActiveRecords(n int) Option {
	return func(c *Config) { c.ActiveRecords = n }
}

// WithCheckAllRecords, if enabled, makes check scan every tracked epoch
// rather than only the queried instruction's own epoch.
func WithCheckAllRecords(enable bool) Option {
	return func(c *Config) { c.CheckAllRecords = enable }
}

// WithCounterSize sets the bit width of counting-Bloom / ideal-saturating
// counters.
func WithCounterSize(bits int) Option {
	return func(c *Config) { c.CounterSize = bits }
}

// WithHashFamily selects the pluggable hash backend hashers are built over.
func WithHashFamily(family xhash.HashFamily) Option {
	return func(c *Config) { c.HashFamily = family }
}

// WithDoubleHashing enables double hashing in place of k independent hash
// functions.
func WithDoubleHashing(enable bool) Option {
	return func(c *Config) { c.DoubleHash = enable }
}

// WithSeed sets the global hash seed.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithPartitioning selects a Bloom filter's cell-placement mode
// (bloomfilter.Shared or bloomfilter.Partitioned).
func WithPartitioning(p int) Option {
	return func(c *Config) { c.Partitioning = p }
}

// WithCounterCacheGeometry sets the counter cache's associativity, set
// count, miss latency (in cycles), and ideal-mode flag.
func WithCounterCacheGeometry(assoc, sets, missLatencyCycles int, ideal bool) Option {
	return func(c *Config) {
		c.CCAssoc = assoc
		c.CCSets = sets
		c.CCMissLatency = missLatencyCycles
		c.CCIdeal = ideal
	}
}

// WithTicksPerCycle overrides the tick-to-cycle conversion factor (default
// 500, matching the original's TICKS_PER_CYCLE macro).
func WithTicksPerCycle(ticks int) Option {
	return func(c *Config) { c.TicksPerCycle = ticks }
}

// WithSeqNumBounds restricts debug tracing to [lower, upper]; either bound
// may be disabled independently.
func WithSeqNumBounds(hasLower bool, lower uint64, hasUpper bool, upper uint64) Option {
	return func(c *Config) {
		c.HasLowerBound = hasLower
		c.LowerSeqNum = lower
		c.HasUpperBound = hasUpper
		c.UpperSeqNum = upper
	}
}
