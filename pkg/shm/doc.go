// Package shm manages one shared memory segment of float32 elements and moves
// data between it and externally owned buffers.
//
// A segment is identified across processes by an integer key > 0. It is
// backed by System V shared memory on Linux and macOS and by a named file
// mapping on Windows. Every transfer is clamped: it copies as many elements as
// fit on both sides and reports the count, it never writes out of bounds.
//
// Example usage:
//
//	seg, err := shm.New(nil)
//	// ...
//	if err := seg.Allocate(ctx, 5, 1024); err != nil {
//	  // seg is unattached
//	}
//	defer seg.Release()
//	n, _ := seg.CopyInto(shm.Values(samples), 0, 0, len(samples))
//
// The segment is destroyed on Release only when no other process is still
// attached to it.
package shm
