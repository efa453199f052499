package xhash

import "testing"

func TestH3Deterministic(t *testing.T) {
	a := NewH3(12345, 8)
	b := NewH3(12345, 8)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	va, err := a.Hash(data, 0)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	vb, err := b.Hash(data, 0)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if va != vb {
		t.Fatalf("same seed produced different digests: %d != %d", va, vb)
	}
}

func TestH3DifferentSeedsDiverge(t *testing.T) {
	a := NewH3(1, 8)
	b := NewH3(2, 8)
	data := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	va, _ := a.Hash(data, 0)
	vb, _ := b.Hash(data, 0)
	if va == vb {
		t.Fatal("different seeds produced identical digests")
	}
}

func TestH3OutOfRangeSpan(t *testing.T) {
	h := NewH3(1, 4)
	if _, err := h.Hash([]byte{1, 2, 3, 4, 5}, 0); err == nil {
		t.Fatal("expected error for input exceeding byte span")
	}
	if _, err := h.Hash([]byte{1, 2}, 3); err == nil {
		t.Fatal("expected error for offset pushing input past byte span")
	}
}

func TestH3ByteSpan(t *testing.T) {
	h := NewH3(1, 36)
	if got := h.ByteSpan(); got != 36 {
		t.Fatalf("ByteSpan() = %d, want 36", got)
	}
}
