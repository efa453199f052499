package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrbarlow/sbsim"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.bin")
	want := []sbsim.Instruction{
		{Addr: 0x1000, Seq: 0, Epoch: 0, Thread: 1, Type: EncodeOp(0, OpInsert)},
		{Addr: 0x2000, Seq: 1, Epoch: 0, Thread: 1, Type: EncodeOp(0, OpCheck)},
		{Addr: 0x1000, Seq: 2, Epoch: 1, Thread: 2, Type: EncodeOp(0, OpRetire)},
	}

	w, err := CreateWriter(path)
	if err != nil {
		t.Fatalf("CreateWriter: %v", err)
	}
	for _, inst := range want {
		if err := w.Write(inst); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(want))
	}
	for i, w := range want {
		got := r.At(i)
		if got != w {
			t.Fatalf("At(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestOpenReaderRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, make([]byte, recordSize+1), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenReader(path); err == nil {
		t.Fatal("OpenReader on a non-multiple-of-recordSize file: got nil error, want error")
	}
}

func TestEncodeDecodeOp(t *testing.T) {
	for op := OpInsert; op <= OpClear; op++ {
		encoded := EncodeOp(0xF0, op)
		if got := DecodeOp(encoded); got != op {
			t.Fatalf("DecodeOp(EncodeOp(0xF0, %d)) = %d, want %d", op, got, op)
		}
	}
}
