package shm

import (
	"errors"
)

var (
	// ErrInvalidKey is returned for keys below 1; key 0 is reserved on System V.
	ErrInvalidKey = errors.New("shm: key should be > 0")
	// ErrInvalidCapacity is returned for negative element counts and for
	// counts whose byte size does not fit in an int.
	ErrInvalidCapacity = errors.New("shm: capacity out of range")
	// ErrAllocate wraps OS failures while creating or attaching a segment.
	ErrAllocate = errors.New("shm: could not allocate segment")
	// ErrTruncated is returned when the OS granted less memory than requested.
	ErrTruncated = errors.New("shm: segment smaller than requested")
	// ErrNoSpace is returned when the host does not have enough memory left.
	ErrNoSpace = errors.New("shm: not enough memory left on host")
	// ErrNotAttached is returned by transfers on a segment that is not attached.
	ErrNotAttached = errors.New("shm: segment not attached")
	// ErrTeardown wraps failures to detach or destroy the previous segment
	// during Allocate.
	ErrTeardown = errors.New("shm: could not release previous segment")
	// ErrShortCopy is returned by the exact transfer variants when clamping
	// moved fewer elements than requested.
	ErrShortCopy = errors.New("shm: copy truncated")
)
