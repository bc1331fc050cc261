// Package shm contains the platform-specific shared memory backends used by pkg/shm.
package shm

import (
	"context"
)

// NativeSegment is one attachment of an OS shared memory object.
//
// Detach drops this process' mapping. Destroy removes the OS object, but only
// when no attachment remains; it reports whether the object was removed.
type NativeSegment interface {
	// Name identifies the OS object, e.g. "sysv key=5 id=32770".
	Name() string
	// Bytes returns the mapped region, nil once detached.
	Bytes() []byte
	// ActualSize returns the size the OS granted, which may differ from the request.
	ActualSize() (int, error)
	Detach() error
	Destroy() (bool, error)
}

// Backend creates or attaches native segments.
type Backend interface {
	Attach(ctx context.Context, opts MapOptions) (NativeSegment, error)
}

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	Key  int
	Size int
}

// minSegmentSize is the smallest size handed to the OS; zero-sized segments
// are rejected by both shmget and CreateFileMapping.
const minSegmentSize = 1

func requestSize(size int) int {
	if size < minSegmentSize {
		return minSegmentSize
	}
	return size
}

