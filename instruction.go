package sbsim

// Instruction is the opaque record the surrounding pipeline reports to the
// Squash Buffer on every event (spec.md §3 "Instruction descriptor"). The
// SB stores only state derived from it, never the descriptor itself.
type Instruction struct {
	// Addr is the instruction's program counter.
	Addr uint64
	// Seq is a monotonically increasing sequence number.
	Seq uint64
	// Epoch labels the program generation (iteration, loop, or routine)
	// this instruction belongs to.
	Epoch uint64
	// Thread identifies the hardware thread context.
	Thread uint16
	// Type is a caller-defined instruction class code, carried for the
	// benefit of callers but not interpreted by the SB.
	Type byte
}
