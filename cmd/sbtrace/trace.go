package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/jrbarlow/sbsim"
)

// recordSize is the fixed on-disk width of one trace record: Addr (8),
// Seq (8), Epoch (8), Thread (2), Type (1), reserved (5), matching the
// teacher's fixed-width on-disk records (index.go's slot layout).
const recordSize = 32

// Writer appends Instruction records to a trace file in the fixed binary
// format Reader expects.
type Writer struct {
	f *os.File
}

// CreateWriter truncates or creates path and returns a Writer over it.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f}, nil
}

// Write appends one record.
func (w *Writer) Write(inst sbsim.Instruction) error {
	var buf [recordSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], inst.Addr)
	binary.LittleEndian.PutUint64(buf[8:16], inst.Seq)
	binary.LittleEndian.PutUint64(buf[16:24], inst.Epoch)
	binary.LittleEndian.PutUint16(buf[24:26], inst.Thread)
	buf[26] = inst.Type
	_, err := w.f.Write(buf[:])
	return err
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Reader memory-maps a trace file and decodes records directly out of the
// mapping, so the Reader itself never reads the file fully into a buffer
// (mirrors index.go's mmap-backed random access).
type Reader struct {
	f *os.File
	m mmap.MMap
	n int
}

// OpenReader maps path read-only and applies the platform's sequential-read
// hint (trace_linux.go / trace_other.go) before any record is decoded.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.Size()%recordSize != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("sbtrace: %s: size %d is not a multiple of the %d-byte record size", path, info.Size(), recordSize)
	}

	fadviseSequential(int(f.Fd()), 0, info.Size())

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{f: f, m: m, n: int(info.Size()) / recordSize}, nil
}

// Len returns the number of records in the trace.
func (r *Reader) Len() int { return r.n }

// At decodes record i without copying the backing mapping beyond the
// returned value.
func (r *Reader) At(i int) sbsim.Instruction {
	off := i * recordSize
	b := r.m[off : off+recordSize]
	return sbsim.Instruction{
		Addr:   binary.LittleEndian.Uint64(b[0:8]),
		Seq:    binary.LittleEndian.Uint64(b[8:16]),
		Epoch:  binary.LittleEndian.Uint64(b[16:24]),
		Thread: binary.LittleEndian.Uint16(b[24:26]),
		Type:   b[26],
	}
}

// Close unmaps the trace and closes the underlying file.
func (r *Reader) Close() error {
	if err := r.m.Unmap(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}
