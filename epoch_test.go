package sbsim

import "testing"

// TestEpochActiveRecordOverflow reproduces spec.md §8 scenario 3: with
// max_active = 2, inserting into a third distinct epoch is dropped from
// the backing structure, SBOverflows becomes 1 and overflowed_epoch
// becomes 3. A miss in the still-tracked epoch 2 returns the conservative
// true; a miss in the never-seen epoch 4 returns false.
func TestEpochActiveRecordOverflow(t *testing.T) {
	cfg := NewConfig(
		WithSBBacking(Bloom),
		WithActiveRecords(2),
		WithProjectedElemCnt(50),
		WithFalsePositiveRate(0.01),
	)
	sb := NewEpochSquashBuffer(cfg)

	sb.Insert(Instruction{Epoch: 1, Addr: 0x100})
	sb.Insert(Instruction{Epoch: 2, Addr: 0x200})
	sb.Insert(Instruction{Epoch: 3, Addr: 0x300})

	if sb.Stats().SBOverflows != 1 {
		t.Fatalf("SBOverflows = %d, want 1", sb.Stats().SBOverflows)
	}
	if sb.overflowedEpoch != 3 {
		t.Fatalf("overflowedEpoch = %d, want 3", sb.overflowedEpoch)
	}

	if got := sb.Check(Instruction{Epoch: 2, Addr: 0xDEAD}); !got {
		t.Fatal("Check(epoch 2, miss) = false, want true (conservative fence)")
	}
	if got := sb.Check(Instruction{Epoch: 4, Addr: 0xDEAD}); got {
		t.Fatal("Check(epoch 4, miss) = true, want false (never within budget)")
	}
}

func TestEpochCheckHitsAreHonored(t *testing.T) {
	cfg := NewConfig(
		WithSBBacking(Bloom),
		WithActiveRecords(4),
		WithProjectedElemCnt(50),
		WithFalsePositiveRate(0.01),
	)
	sb := NewEpochSquashBuffer(cfg)
	sb.Insert(Instruction{Epoch: 1, Addr: 0xAAAA})
	if !sb.Check(Instruction{Epoch: 1, Addr: 0xAAAA}) {
		t.Fatal("Check of an inserted address returned false")
	}
}

// TestEpochIdealNoFalsePositivesOrNegatives covers invariant 5: in IDEAL
// mode with checkAllRecords = false, accuracy is perfect absent
// active-record overflow.
func TestEpochIdealNoFalsePositivesOrNegatives(t *testing.T) {
	cfg := NewConfig(
		WithSBBacking(Ideal),
		WithActiveRecords(8),
		WithCheckAllRecords(false),
	)
	sb := NewEpochSquashBuffer(cfg)
	sb.Insert(Instruction{Epoch: 1, Addr: 1})
	sb.Insert(Instruction{Epoch: 1, Addr: 2})
	sb.Check(Instruction{Epoch: 1, Addr: 1})
	sb.Check(Instruction{Epoch: 1, Addr: 3}) // genuine miss
	sb.Check(Instruction{Epoch: 1, Addr: 2})

	if sb.Stats().FFalsePositives != 0 {
		t.Fatalf("FFalsePositives = %d, want 0", sb.Stats().FFalsePositives)
	}
	if sb.Stats().FFalseNegatives != 0 {
		t.Fatalf("FFalseNegatives = %d, want 0", sb.Stats().FFalseNegatives)
	}
}

// TestEpochCountingBloomRetire exercises the retirement-driven decrement
// round-trip: insert then retire on a counting-Bloom Epoch SB with
// deleteOnRetire leaves the filter equivalent to its pre-insert state
// (spec.md §8 "Round-trip / idempotence").
func TestEpochCountingBloomRetire(t *testing.T) {
	cfg := NewConfig(
		WithSBBacking(CountingBloom),
		WithActiveRecords(4),
		WithDeleteOnRetire(true),
		WithCounterSize(4),
		WithProjectedElemCnt(50),
		WithFalsePositiveRate(0.01),
	)
	sb := NewEpochSquashBuffer(cfg)
	inst := Instruction{Epoch: 1, Addr: 0x700}

	sb.Insert(inst)
	if !sb.Check(inst) {
		t.Fatal("Check after Insert = false, want true")
	}
	sb.Retire(inst)
	if sb.Check(inst) {
		t.Fatal("Check after matching Retire = true, want false")
	}
	if sb.Stats().SBRetireDeletions != 1 {
		t.Fatalf("SBRetireDeletions = %d, want 1", sb.Stats().SBRetireDeletions)
	}
}

func TestEpochClearDropsOldEpochsOnly(t *testing.T) {
	cfg := NewConfig(
		WithSBBacking(Ideal),
		WithActiveRecords(8),
	)
	sb := NewEpochSquashBuffer(cfg)
	sb.Insert(Instruction{Epoch: 1, Addr: 1})
	sb.Insert(Instruction{Epoch: 2, Addr: 2})
	sb.Insert(Instruction{Epoch: 3, Addr: 3})

	sb.Clear(Instruction{Epoch: 3}) // drops epochs <= 2

	if sb.Check(Instruction{Epoch: 1, Addr: 1}) {
		t.Fatal("epoch 1 record survived Clear(epoch=3)")
	}
	if sb.Check(Instruction{Epoch: 2, Addr: 2}) {
		t.Fatal("epoch 2 record survived Clear(epoch=3)")
	}
	if !sb.Check(Instruction{Epoch: 3, Addr: 3}) {
		t.Fatal("epoch 3 record was dropped by Clear(epoch=3), want retained")
	}
}

func TestEpochDoubleClearRemovesNothingTwice(t *testing.T) {
	cfg := NewConfig(WithSBBacking(Ideal), WithActiveRecords(8))
	sb := NewEpochSquashBuffer(cfg)
	sb.Insert(Instruction{Epoch: 1, Addr: 1})
	sb.Clear(Instruction{Epoch: 2})
	before := sb.Stats().SBClears
	sb.Clear(Instruction{Epoch: 2})
	if sb.Stats().SBClears != before {
		t.Fatalf("second identical Clear changed SBClears from %d to %d", before, sb.Stats().SBClears)
	}
}

func TestEpochClearZeroEpochIsNoop(t *testing.T) {
	cfg := NewConfig(WithSBBacking(Ideal), WithActiveRecords(8))
	sb := NewEpochSquashBuffer(cfg)
	sb.Insert(Instruction{Epoch: 0, Addr: 1})
	sb.Clear(Instruction{Epoch: 0})
	if !sb.Check(Instruction{Epoch: 0, Addr: 1}) {
		t.Fatal("Clear(epoch=0) removed epoch 0's own record, want no-op")
	}
}

func TestEpochSquashIsNoop(t *testing.T) {
	cfg := NewConfig(WithSBBacking(Ideal), WithActiveRecords(8))
	sb := NewEpochSquashBuffer(cfg)
	sb.Squash(Instruction{Epoch: 1, Addr: 1}) // must not panic or allocate a record
	if len(sb.live) != 0 {
		t.Fatalf("Squash allocated %d live records, want 0", len(sb.live))
	}
}
