package shm

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	internalshm "github.com/srediag/plugin-shmem/internal/shm"
)

const (
	defaultAttachRetries = 2
	defaultRetryInterval = 5 * time.Millisecond
)

// Backend creates or attaches native segments. See DefaultBackend.
type Backend = internalshm.Backend

// NativeSegment is one attachment of an OS shared memory object.
type NativeSegment = internalshm.NativeSegment

// MapOptions is passed to Backend.Attach.
type MapOptions = internalshm.MapOptions

// ProcessBackend keeps segments in the current process' heap.
type ProcessBackend = internalshm.ProcessBackend

// ElementSize is the width in bytes of one segment element.
const ElementSize = internalshm.ElementSize

// DefaultBackend returns the backend of the running platform: System V shared
// memory on Linux and macOS, named file mappings on Windows.
func DefaultBackend() Backend {
	return internalshm.DefaultBackend()
}

// NewProcessBackend returns a backend whose segments live in this process only.
func NewProcessBackend() *ProcessBackend {
	return internalshm.NewProcessBackend()
}

// Config holds segment creation parameters.
type Config struct {
	// Backend attaches the OS object. Defaults to DefaultBackend().
	Backend Backend
	// AttachRetries is how many times a transient attach failure is retried.
	AttachRetries int
	// RetryInterval is the initial backoff between attach attempts.
	RetryInterval time.Duration
	// CheckHostMemory refuses allocations larger than the host's available memory.
	CheckHostMemory bool
	Meter           metric.Meter
	Tracer          trace.Tracer
}

// DefaultConfig returns the configuration used by New(nil).
func DefaultConfig() *Config {
	return &Config{
		Backend:         DefaultBackend(),
		AttachRetries:   defaultAttachRetries,
		RetryInterval:   defaultRetryInterval,
		CheckHostMemory: true,
	}
}

// VerifyConfig checks cfg for values New cannot work with.
func VerifyConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Backend == nil {
		return errors.New("config.Backend is nil")
	}
	if cfg.AttachRetries < 0 {
		return fmt.Errorf("config.AttachRetries:%d should be >= 0", cfg.AttachRetries)
	}
	if cfg.AttachRetries > 0 && cfg.RetryInterval <= 0 {
		return fmt.Errorf("config.RetryInterval:%s should be > 0 when retries are enabled", cfg.RetryInterval)
	}
	return nil
}
