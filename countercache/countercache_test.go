package countercache

import "testing"

// TestScenario5LRUEviction reproduces spec.md §8 scenario 5: ways=2,
// sets=1, miss latency 10 cycles (ticksPerCycle=1, so 10 ticks). Two
// fetches fill the single set; a reference to the first line after its
// latency has elapsed hits and promotes it to the front of the LRU order;
// a third fetch then evicts the least-recently-used line (line 1, from
// pc=64) rather than the just-promoted line 0.
func TestScenario5LRUEviction(t *testing.T) {
	counterMap := map[uint64]int{0: 10, 1: 20, 2: 30}
	c := New(2, 1, 10, 1, false, counterMap)

	c.Fetch(0, 0)   // line 0
	c.Fetch(64, 0)  // line 1

	if got := c.SetSize(0); got != 2 {
		t.Fatalf("SetSize(0) = %d, want 2", got)
	}

	result, value := c.Refer(0, 10)
	if result != Hit {
		t.Fatalf("Refer(pc=0, now=10) = %v, want Hit", result)
	}
	if value != 10 {
		t.Fatalf("Refer(pc=0, now=10) value = %d, want 10", value)
	}

	c.Fetch(128, 11) // line 2, must evict line 1 (LRU back), not line 0

	if got := c.Stats().PerSetReplacements[0]; got != 1 {
		t.Fatalf("PerSetReplacements[0] = %d, want 1", got)
	}

	if result, _ := c.Refer(0, 21); result != Hit {
		t.Fatalf("Refer(pc=0) after eviction round = %v, want Hit (line 0 survived)", result)
	}
	if result, _ := c.Refer(64, 21); result != Miss {
		t.Fatalf("Refer(pc=64) after eviction round = %v, want Miss (line 1 evicted)", result)
	}
}

func TestReferMissInFlightBeforeLatencyElapses(t *testing.T) {
	counterMap := map[uint64]int{0: 7}
	c := New(2, 1, 10, 1, false, counterMap)
	c.Fetch(0, 0)

	if result, _ := c.Refer(0, 5); result != MissInFlight {
		t.Fatalf("Refer before latency elapses = %v, want MissInFlight", result)
	}
	if result, _ := c.Refer(0, 10); result != Hit {
		t.Fatalf("Refer once latency elapses = %v, want Hit", result)
	}
}

func TestReferMissWhenLineNeverFetched(t *testing.T) {
	c := New(2, 1, 10, 1, false, map[uint64]int{})
	if result, _ := c.Refer(0, 100); result != Miss {
		t.Fatalf("Refer on unfetched line = %v, want Miss", result)
	}
}

func TestIdealModeAlwaysHits(t *testing.T) {
	counterMap := map[uint64]int{5: 42}
	c := New(1, 1, 10, 1, true, counterMap)
	result, value := c.Refer(5*lineSize, 0)
	if result != Hit {
		t.Fatalf("ideal-mode Refer = %v, want Hit", result)
	}
	if value != 42 {
		t.Fatalf("ideal-mode Refer value = %d, want 42", value)
	}
}

func TestMultipleSetsIndependentEviction(t *testing.T) {
	c := New(1, 2, 10, 1, false, map[uint64]int{})
	c.Fetch(0, 0)   // line 0 -> set 0
	c.Fetch(64, 0)  // line 1 -> set 1
	if got := c.Stats().PerSetReplacements[0]; got != 0 {
		t.Fatalf("set 0 replacements = %d, want 0 (no collision across sets)", got)
	}
	if got := c.Stats().PerSetReplacements[1]; got != 0 {
		t.Fatalf("set 1 replacements = %d, want 0 (no collision across sets)", got)
	}

	c.Fetch(128, 0) // line 2 -> set 0, evicts line 0
	if got := c.Stats().PerSetReplacements[0]; got != 1 {
		t.Fatalf("set 0 replacements after collision = %d, want 1", got)
	}
	if result, _ := c.Refer(64, 10); result != Hit {
		t.Fatal("line 1 in set 1 should be unaffected by set 0 eviction")
	}
}

func TestNewPanicsOnInvalidGeometry(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing a cache with zero ways")
		}
	}()
	New[int](0, 1, 10, 1, false, nil)
}

func TestHitRate(t *testing.T) {
	c := New(2, 1, 10, 1, false, map[uint64]int{0: 1})
	c.Fetch(0, 0)
	c.Refer(0, 10)  // hit
	c.Refer(99, 10) // miss (never fetched)

	stats := c.Stats()
	if stats.RefCnt != 2 {
		t.Fatalf("RefCnt = %d, want 2", stats.RefCnt)
	}
	if stats.HitCnt != 1 {
		t.Fatalf("HitCnt = %d, want 1", stats.HitCnt)
	}
	if got := stats.HitRate(); got != 0.5 {
		t.Fatalf("HitRate = %v, want 0.5", got)
	}
}
