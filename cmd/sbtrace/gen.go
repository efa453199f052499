package main

import (
	"math/rand"

	"github.com/jrbarlow/sbsim"
)

// Op names which SquashBuffer method a generated Instruction drives when
// replayed. The trace format carries it in the otherwise-unused low bits
// of Instruction.Type alongside the caller-defined instruction class in
// the high bits, since spec.md §3 leaves Type uninterpreted by the SB
// itself and free for callers to repurpose.
type Op byte

const (
	OpInsert Op = iota
	OpCheck
	OpSquash
	OpRetire
	OpClear
)

const opMask = 0x07

// EncodeOp packs op into instType's low three bits.
func EncodeOp(instType byte, op Op) byte {
	return (instType &^ opMask) | byte(op)&opMask
}

// DecodeOp extracts the Op packed by EncodeOp.
func DecodeOp(instType byte) Op {
	return Op(instType & opMask)
}

// GenConfig parameterizes synthetic trace generation.
type GenConfig struct {
	Count     int
	EpochSize int
	Scale     sbsim.EpochScale
	AddrSpan  uint64
	Seed      int64
}

// Generate produces a deterministic synthetic instruction trace: addresses
// drawn from a bounded working set (so repeats, and hence replays, actually
// occur), sequence numbers monotonically increasing, and epoch numbers that
// advance every EpochSize instructions when Scale names a real granularity
// (spec.md §5 supplemented feature #2 — EpochScale drives generation only,
// never core SB logic).
func Generate(cfg GenConfig) []sbsim.Instruction {
	rng := rand.New(rand.NewSource(cfg.Seed))
	insts := make([]sbsim.Instruction, cfg.Count)

	epochSize := cfg.EpochSize
	if epochSize <= 0 || cfg.Scale == sbsim.EpochInvalid {
		epochSize = cfg.Count + 1 // never advances: everything lands in epoch 0
	}

	for i := 0; i < cfg.Count; i++ {
		addr := uint64(rng.Int63n(int64(cfg.AddrSpan)))
		epoch := uint64(i / epochSize)

		op := OpInsert
		switch {
		case i > 0 && rng.Float64() < 0.35:
			op = OpCheck
		case rng.Float64() < 0.05:
			op = OpRetire
		case rng.Float64() < 0.02:
			op = OpSquash
		case epoch > 0 && rng.Float64() < 0.01:
			op = OpClear
		}

		insts[i] = sbsim.Instruction{
			Addr:   addr,
			Seq:    uint64(i),
			Epoch:  epoch,
			Thread: 0,
			Type:   EncodeOp(0, op),
		}
	}
	return insts
}
