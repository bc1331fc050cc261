//go:build !linux && !darwin && !windows

package shm

// DefaultBackend falls back to process-local segments where the OS offers
// neither System V shared memory nor file mappings.
func DefaultBackend() Backend {
	return sharedProcessBackend
}

var sharedProcessBackend = NewProcessBackend()

// IsTransient reports whether an attach error is worth retrying.
func IsTransient(err error) bool {
	return false
}
