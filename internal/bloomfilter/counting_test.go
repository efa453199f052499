package bloomfilter

import (
	"testing"

	"github.com/jrbarlow/sbsim/internal/xhash"
)

// TestCountingFilterSaturationAsymmetry reproduces spec.md §8 scenario 4:
// three adds into a 2-bit counter (max 3) saturate it; the first remove is
// absorbed as a no-op, and the next two removes decrement normally.
func TestCountingFilterSaturationAsymmetry(t *testing.T) {
	params := Params{M: 1, K: 1, Seed: 1}
	hasher := xhash.MakeHasher(1, 1, false)
	f := NewCounting(params, 2, Shared, hasher)

	const key = 0xA
	f.Add(key)
	f.Add(key)
	overflowed := f.Add(key)
	if !overflowed {
		t.Fatal("third Add did not report overflow")
	}
	if got := f.Lookup(key); got != 3 {
		t.Fatalf("Lookup after three adds = %d, want 3 (saturated)", got)
	}

	f.Remove(key)
	if got := f.Lookup(key); got != 3 {
		t.Fatalf("Lookup after first remove = %d, want 3 (no-op from saturation)", got)
	}

	f.Remove(key)
	if got := f.Lookup(key); got != 2 {
		t.Fatalf("Lookup after second remove = %d, want 2", got)
	}

	f.Remove(key)
	if got := f.Lookup(key); got != 1 {
		t.Fatalf("Lookup after third remove = %d, want 1", got)
	}
}

func TestCountingFilterRemoveClampsAtZero(t *testing.T) {
	params := Params{M: 4, K: 2, Seed: 3}
	hasher := xhash.MakeHasher(2, 3, false)
	f := NewCounting(params, 4, Shared, hasher)
	f.Remove(99) // never added; must not panic or underflow
	if got := f.Lookup(99); got != 0 {
		t.Fatalf("Lookup(99) = %d, want 0", got)
	}
}

func TestCountingFilterClearResetsDebt(t *testing.T) {
	params := Params{M: 1, K: 1, Seed: 1}
	hasher := xhash.MakeHasher(1, 1, false)
	f := NewCounting(params, 2, Shared, hasher)
	const key = 0xB
	f.Add(key)
	f.Add(key)
	f.Add(key) // saturates, owes a no-op remove
	f.Clear()
	if got := f.Lookup(key); got != 0 {
		t.Fatalf("Lookup after Clear = %d, want 0", got)
	}
	f.Add(key)
	f.Remove(key)
	if got := f.Lookup(key); got != 0 {
		t.Fatalf("Lookup = %d, want 0: Clear must not leave a stale saturation debt", got)
	}
}

func TestCountingFilterMaxCounter(t *testing.T) {
	params := Params{M: 4, K: 1, Seed: 1}
	hasher := xhash.MakeHasher(1, 1, false)
	f := NewCounting(params, 3, Shared, hasher)
	if got := f.MaxCounter(); got != 7 {
		t.Fatalf("MaxCounter() = %d, want 7", got)
	}
}
