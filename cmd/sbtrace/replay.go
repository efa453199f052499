package main

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/jrbarlow/sbsim"
)

// keyDigest folds an Instruction's (addr, seq, epoch, type) tuple into a
// single 64-bit key, used here to recognize and drop literal duplicate
// trace records before replay. The model itself is single-threaded per SB
// instance (spec.md §5), so this dedup is a property of the trace file,
// not of concurrent access to shared state.
func keyDigest(inst sbsim.Instruction) uint64 {
	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:8], inst.Addr)
	binary.LittleEndian.PutUint64(buf[8:16], inst.Seq)
	binary.LittleEndian.PutUint64(buf[16:24], inst.Epoch)
	buf[24] = inst.Type
	return xxh3.Hash(buf[:])
}

// dedupe drops instructions whose full digest has already been seen in
// this shard, preserving order.
func dedupe(shard []sbsim.Instruction) []sbsim.Instruction {
	seen := make(map[uint64]struct{}, len(shard))
	out := shard[:0:0]
	for _, inst := range shard {
		d := keyDigest(inst)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, inst)
	}
	return out
}

// shard splits insts into n contiguous, roughly equal chunks. Splitting
// contiguously (rather than round-robin) preserves each chunk's internal
// sequence-number ordering, which the Simple Squash Buffer's forward-jump
// rule depends on.
func shard(insts []sbsim.Instruction, n int) [][]sbsim.Instruction {
	if n <= 0 {
		n = 1
	}
	shards := make([][]sbsim.Instruction, 0, n)
	size := (len(insts) + n - 1) / n
	if size == 0 {
		size = 1
	}
	for i := 0; i < len(insts); i += size {
		end := i + size
		if end > len(insts) {
			end = len(insts)
		}
		shards = append(shards, insts[i:end])
	}
	return shards
}

// dispatch applies inst to sb according to the Op packed into inst.Type.
func dispatch(sb sbsim.SquashBuffer, inst sbsim.Instruction) {
	switch DecodeOp(inst.Type) {
	case OpInsert:
		sb.Insert(inst)
	case OpCheck:
		sb.Check(inst)
	case OpSquash:
		sb.Squash(inst)
	case OpRetire:
		sb.Retire(inst)
	case OpClear:
		sb.Clear(inst)
	}
}

// Replay runs insts, split into numShards contiguous shards, each against
// its own freshly constructed SquashBuffer (one instance per shard: the
// model is explicitly single-threaded per instance, spec.md §5), and
// returns each shard's resulting statistics bank in shard order.
func Replay(cfg *sbsim.Config, insts []sbsim.Instruction, numShards int) ([]*sbsim.Stats, error) {
	shards := shard(insts, numShards)
	results := make([]*sbsim.Stats, len(shards))

	var g errgroup.Group
	for i, s := range shards {
		i, s := i, s
		g.Go(func() error {
			sb := sbsim.NewSquashBuffer(cfg)
			defer func() {
				if recover() != nil {
					// Retire on a policy that doesn't support it (Simple
					// Squash Buffer) panics by design
					// (sberrors.ErrRetireUnsupported); a synthetic trace can
					// legitimately hit that path, so this shard reports
					// whatever stats it accumulated before the panic
					// instead of failing the whole run.
					results[i] = sb.Stats()
				}
			}()
			for _, inst := range dedupe(s) {
				dispatch(sb, inst)
			}
			results[i] = sb.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
