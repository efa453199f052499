// Package countercache implements the set-associative, LRU-replaced,
// latency-modelled cache the replay-detection layer consults independently
// of the Squash Buffer itself (spec.md §4.H). It wraps an external,
// caller-owned counter map: the cache never owns or mutates the counter
// values, only the metadata describing which lines are currently resident
// and how recently they were used.
//
// The per-set LRU order is a direct generalization of the single-bucket
// LRU pattern used elsewhere in this codebase's ancestry
// (container/list-based, one list per bucket instead of one global list),
// adapted here to a fixed number of independently-replaced sets.
package countercache

import (
	"container/list"

	sberrors "github.com/jrbarlow/sbsim/errors"
)

// lineSize is the number of bytes a single cache line covers, fixing
// line = pc / 64 (spec.md §4.H).
const lineSize = 64

// ReferResult is the three-way outcome of a Refer call.
type ReferResult int

const (
	// Miss means the line is not resident in its set.
	Miss ReferResult = iota
	// MissInFlight means the line is resident but its fetch latency has
	// not yet elapsed; the caller must retry later.
	MissInFlight
	// Hit means the line is resident and ready.
	Hit
)

type lineEntry struct {
	line uint64
}

type cacheSet struct {
	order *list.List
	elems map[uint64]*list.Element

	replacements uint64
}

func newCacheSet() *cacheSet {
	return &cacheSet{
		order: list.New(),
		elems: make(map[uint64]*list.Element),
	}
}

// Stats holds the cache-wide and per-set counters exposed to callers
// (spec.md §4.H "Statistics").
type Stats struct {
	RefCnt              uint64
	HitCnt              uint64
	PerSetReplacements  []uint64
}

// HitRate returns HitCnt / RefCnt, or 0 if no references have occurred.
func (s *Stats) HitRate() float64 {
	if s.RefCnt == 0 {
		return 0
	}
	return float64(s.HitCnt) / float64(s.RefCnt)
}

// Cache is a set-associative LRU cache of fixed-latency loads over an
// external CounterMap (spec.md §4.H). V is the type the caller's counter
// map stores per line; the cache never inspects or mutates V, it only
// tracks residency and recency.
type Cache[V any] struct {
	ways          int
	sets          int
	missLatency   int
	ticksPerCycle int
	ideal         bool

	counterMap map[uint64]V
	issueTime  map[uint64]uint64
	setState   []*cacheSet

	stats Stats
}

// New constructs a counter cache with ways-way associativity, the given
// number of sets, a miss latency of missLatencyCycles cycles (converted to
// ticks via ticksPerCycle), and an optional ideal mode in which every
// reference hits unconditionally. counterMap is shared by reference and
// is only ever read.
func New[V any](ways, sets, missLatencyCycles, ticksPerCycle int, ideal bool, counterMap map[uint64]V) *Cache[V] {
	if ways <= 0 || sets <= 0 {
		panic(sberrors.ErrInvalidCounterCache)
	}
	setState := make([]*cacheSet, sets)
	for i := range setState {
		setState[i] = newCacheSet()
	}
	return &Cache[V]{
		ways:          ways,
		sets:          sets,
		missLatency:   missLatencyCycles,
		ticksPerCycle: ticksPerCycle,
		ideal:         ideal,
		counterMap:    counterMap,
		issueTime:     make(map[uint64]uint64),
		setState:      setState,
		stats:         Stats{PerSetReplacements: make([]uint64, sets)},
	}
}

func (c *Cache[V]) lineAndSet(pc uint64) (line uint64, set int) {
	line = pc / lineSize
	set = int(line % uint64(c.sets))
	return
}

// Refer looks up pc's line at tick now. In ideal mode every reference
// hits and returns the counter map's current value for that line. If the
// line is resident but its miss latency has not yet elapsed, MissInFlight
// is reported and the caller is expected to retry later. A resident,
// ready line is moved to the front of its set's LRU order.
func (c *Cache[V]) Refer(pc uint64, now uint64) (ReferResult, V) {
	c.stats.RefCnt++
	line, set := c.lineAndSet(pc)

	if c.ideal {
		c.stats.HitCnt++
		return Hit, c.counterMap[line]
	}

	cs := c.setState[set]
	elem, ok := cs.elems[line]
	if !ok {
		var zero V
		return Miss, zero
	}

	latencyTicks := uint64(c.missLatency * c.ticksPerCycle)
	if now-c.issueTime[line] < latencyTicks {
		var zero V
		return MissInFlight, zero
	}

	cs.order.MoveToFront(elem)
	c.stats.HitCnt++
	return Hit, c.counterMap[line]
}

// Fetch installs pc's line, evicting the LRU back of its set if full, and
// returns the tick at which the line becomes ready. Eviction increments
// that set's replacement counter.
func (c *Cache[V]) Fetch(pc uint64, now uint64) (readyTick uint64) {
	line, set := c.lineAndSet(pc)
	cs := c.setState[set]

	if elem, ok := cs.elems[line]; ok {
		cs.order.MoveToFront(elem)
	} else {
		if cs.order.Len() >= c.ways {
			back := cs.order.Back()
			if back != nil {
				evicted := back.Value.(*lineEntry).line
				cs.order.Remove(back)
				delete(cs.elems, evicted)
				delete(c.issueTime, evicted)
				cs.replacements++
				c.stats.PerSetReplacements[set]++
			}
		}
		elem := cs.order.PushFront(&lineEntry{line: line})
		cs.elems[line] = elem
	}

	c.issueTime[line] = now
	return now + uint64(c.missLatency*c.ticksPerCycle)
}

// Ways returns the cache's associativity.
func (c *Cache[V]) Ways() int { return c.ways }

// Sets returns the cache's number of sets.
func (c *Cache[V]) Sets() int { return c.sets }

// SetSize returns the number of resident lines in set, for invariant
// checks (|cache[set]| <= Ways()).
func (c *Cache[V]) SetSize(set int) int { return c.setState[set].order.Len() }

// Stats returns a copy of the cache's statistics bank.
func (c *Cache[V]) Stats() Stats {
	cp := c.stats
	cp.PerSetReplacements = append([]uint64(nil), c.stats.PerSetReplacements...)
	return cp
}
