//go:build linux

package main

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that the trace file will be read
// sequentially end to end. Best-effort: errors are silently ignored.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
