// Package sbsim implements the Squash Buffer subsystem of an out-of-order
// processor simulator studying hardware defenses against transient-execution
// attacks. It tracks instruction addresses whose execution was squashed so
// that downstream replay-detection logic can decide whether a later
// instruction replays prior squashed work.
//
// The package is a deterministic, in-memory component: given the same event
// stream it produces the same decisions. It performs no I/O, owns no
// goroutines, and blocks on nothing; every operation runs to completion
// synchronously. Callers drive a SquashBuffer with five events keyed by an
// Instruction: Insert, Check, Squash, Retire, and Clear.
//
// Two policies are provided: SimpleSquashBuffer, a single-generation store
// keyed by the oldest outstanding squash source, and EpochSquashBuffer, a
// generation-indexed store with an active-record budget, counter-overflow
// fallback, and retirement-driven decrement. Both share the SquashBuffer
// capability interface and are selected by Config at construction.
package sbsim
