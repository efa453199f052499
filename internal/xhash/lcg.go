package xhash

// minstd0 is a Lehmer / Park-Miller linear congruential generator matching
// C++'s std::minstd_rand0: x[n+1] = 16807 * x[n] mod (2^31 - 1). H3 and the
// hasher factory both seed from this generator so that a given (seed) or
// (k, seed, double) reproduces identical digests across runs and instances
// (spec.md §8 scenario 6).
type minstd0 struct {
	state uint64
}

const (
	minstd0Multiplier = 16807
	minstd0Modulus    = 2147483647 // 2^31 - 1
)

func newMinstd0(seed uint64) *minstd0 {
	s := seed % minstd0Modulus
	if s == 0 {
		s = 1
	}
	return &minstd0{state: s}
}

// next returns the generator's next 31-bit value.
func (m *minstd0) next() uint32 {
	m.state = (m.state * minstd0Multiplier) % minstd0Modulus
	return uint32(m.state)
}
