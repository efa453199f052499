// Package bitvec provides a fixed-length packed bit vector and a bit-packed
// counter vector built on top of it, with saturating (increment) and
// two's-complement (decrement) arithmetic.
//
// The counter vector's arithmetic is a direct translation of the ripple-carry
// adder in libbf's bf::counter_vector (Matthias Vallentin, 2016): cell-wise
// full-adder chains rather than machine-word shifts, so that behavior stays
// correct for arbitrary, non-power-of-two cell widths.
package bitvec

import sberrors "github.com/jrbarlow/sbsim/errors"

const wordBits = 64

// BitVector is an ordered sequence of n bits, little-endian within each
// backing word. n is fixed at construction.
type BitVector struct {
	words []uint64
	n     int
}

// New returns a zeroed BitVector of n bits.
func New(n int) *BitVector {
	if n < 0 {
		panic("bitvec: negative length")
	}
	return &BitVector{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the number of bits in the vector.
func (b *BitVector) Len() int { return b.n }

// Get returns the value of bit i.
func (b *BitVector) Get(i int) bool {
	b.checkIndex(i)
	return b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Set sets bit i to v.
func (b *BitVector) Set(i int, v bool) {
	b.checkIndex(i)
	mask := uint64(1) << uint(i%wordBits)
	if v {
		b.words[i/wordBits] |= mask
	} else {
		b.words[i/wordBits] &^= mask
	}
}

// Reset clears every bit in the vector.
func (b *BitVector) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

func (b *BitVector) checkIndex(i int) {
	if i < 0 || i >= b.n {
		panic("bitvec: index out of range")
	}
}

// CounterVector wraps a BitVector of length cells*width, treating each
// consecutive run of width bits as one fixed-width saturating counter. Cell
// i occupies bits [i*width, (i+1)*width).
type CounterVector struct {
	bits  *BitVector
	cells int
	width int
	max   uint64
}

// NewCounterVector builds a counter vector of the given cell count and
// per-cell bit width. Both must be positive.
func NewCounterVector(cells, width int) *CounterVector {
	if cells <= 0 {
		panic(sberrors.ErrZeroCells)
	}
	if width <= 0 {
		panic(sberrors.ErrZeroWidth)
	}
	var max uint64
	if width >= 64 {
		max = ^uint64(0)
	} else {
		max = (uint64(1) << uint(width)) - 1
	}
	return &CounterVector{
		bits:  New(cells * width),
		cells: cells,
		width: width,
		max:   max,
	}
}

// Cells returns the number of counters in the vector.
func (c *CounterVector) Cells() int { return c.cells }

// Width returns the number of bits per counter.
func (c *CounterVector) Width() int { return c.width }

// Max returns the maximum representable counter value, 2^width - 1.
func (c *CounterVector) Max() uint64 { return c.max }

func (c *CounterVector) checkCell(cell int) {
	if cell < 0 || cell >= c.cells {
		panic("bitvec: cell index out of range")
	}
}

// Count returns the current value of cell.
func (c *CounterVector) Count(cell int) uint64 {
	c.checkCell(cell)
	lsb := cell * c.width
	var v uint64
	for i := 0; i < c.width; i++ {
		if c.bits.Get(lsb + i) {
			v |= uint64(1) << uint(i)
		}
	}
	return v
}

// Set writes value directly into cell. value must not exceed Max().
func (c *CounterVector) Set(cell int, value uint64) {
	c.checkCell(cell)
	if value > c.max {
		panic(sberrors.ErrValueTooLarge)
	}
	lsb := cell * c.width
	for i := 0; i < c.width; i++ {
		c.bits.Set(lsb+i, value&(uint64(1)<<uint(i)) != 0)
	}
}

// Increment ripple-carry adds value to cell. If the addition carries out of
// the most-significant bit, the cell is saturated to all-ones and ok is
// false. Otherwise ok is true.
func (c *CounterVector) Increment(cell int, value uint64) (ok bool) {
	c.checkCell(cell)
	lsb := cell * c.width
	carry := false
	for i := 0; i < c.width; i++ {
		b1 := c.bits.Get(lsb + i)
		b2 := value&(uint64(1)<<uint(i)) != 0
		c.bits.Set(lsb+i, b1 != b2 != carry)
		carry = (b1 && b2) || (carry && (b1 != b2))
	}
	if carry {
		for i := 0; i < c.width; i++ {
			c.bits.Set(lsb+i, true)
		}
		return false
	}
	return true
}

// Decrement subtracts value from cell via two's-complement addition
// (cell + ^value + 1). underflow reports whether the subtraction borrowed
// out of the most-significant bit, i.e. the mathematical result went
// negative. On underflow the raw wrapped two's-complement bit pattern is
// left in the cell; callers that need clamp-at-zero semantics (counting
// Bloom filters) must apply that themselves.
func (c *CounterVector) Decrement(cell int, value uint64) (underflow bool) {
	c.checkCell(cell)
	lsb := cell * c.width
	negValue := (^value) + 1
	carry := false
	for i := 0; i < c.width; i++ {
		b1 := c.bits.Get(lsb + i)
		b2 := negValue&(uint64(1)<<uint(i)) != 0
		c.bits.Set(lsb+i, b1 != b2 != carry)
		carry = (b1 && b2) || (carry && (b1 != b2))
	}
	return !carry
}

// Clear zeros every counter.
func (c *CounterVector) Clear() {
	c.bits.Reset()
}

// Or performs a cell-wise saturating add of other into c (the counter
// vector's |= merge: cells are summed, not bitwise ORed, and a sum that
// carries out of a cell saturates it instead of wrapping around).
// Both vectors must have equal cell count and width.
func (c *CounterVector) Or(other *CounterVector) {
	if c.cells != other.cells || c.width != other.width {
		panic(sberrors.ErrSizeMismatch)
	}
	for cell := 0; cell < c.cells; cell++ {
		lsb := cell * c.width
		carry := false
		for i := 0; i < c.width; i++ {
			b1 := c.bits.Get(lsb + i)
			b2 := other.bits.Get(lsb + i)
			c.bits.Set(lsb+i, b1 != b2 != carry)
			carry = (b1 && b2) || (carry && (b1 != b2))
		}
		if carry {
			for i := 0; i < c.width; i++ {
				c.bits.Set(lsb+i, true)
			}
		}
	}
}
