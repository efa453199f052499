package sbsim

import sberrors "github.com/jrbarlow/sbsim/errors"

// SquashBuffer is the capability set shared by SimpleSquashBuffer and
// EpochSquashBuffer (spec.md §9 "Polymorphism over SB variants"). Callers
// that don't care which policy backs a buffer can program against this
// interface; both concrete types also expose policy-specific accessors.
type SquashBuffer interface {
	// Insert records inst as squashed.
	Insert(inst Instruction)
	// Check reports whether inst looks like a replay of a previously
	// squashed instruction.
	Check(inst Instruction) bool
	// Squash records that inst was itself squashed.
	Squash(inst Instruction)
	// Retire removes inst's squash record, if the policy supports
	// retirement.
	Retire(inst Instruction)
	// Clear drops state made obsolete by inst's position in program
	// order.
	Clear(inst Instruction)
	// Full reports whether the buffer has reached its capacity limit.
	Full() bool
	// MaxSize returns the buffer's configured capacity.
	MaxSize() int
	// Stats returns the buffer's read-only statistics bank.
	Stats() *Stats
}

// NewSquashBuffer selects and constructs the concrete Squash Buffer policy
// named by cfg.ReplayDetection (spec.md §4.I). NoDetect and Counter name
// replay-detection modes that do not consult a Squash Buffer at all; for
// those (and any other mode) it panics with ErrUnknownReplayDetectionMode.
func NewSquashBuffer(cfg *Config) SquashBuffer {
	switch cfg.ReplayDetection {
	case Buffer:
		return NewSimpleSquashBuffer(cfg)
	case Epoch:
		return NewEpochSquashBuffer(cfg)
	default:
		panic(sberrors.ErrUnknownReplayDetectionMode)
	}
}
