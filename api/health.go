// Package api defines the contracts plugin-shmem expects from its host.
package api

// Health exposes the state checked by liveness and readiness probes.
type Health interface {
	// Attached reports whether every live object holds an attached segment.
	Attached() error
}
