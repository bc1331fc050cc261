package shm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	internalshm "github.com/srediag/plugin-shmem/internal/shm"
)

// MaxCapacity is the largest element count whose byte size fits in an int.
const MaxCapacity = math.MaxInt / ElementSize

// Segment manages the lifecycle of one shared memory segment holding
// capacity float32 elements, identified across processes by an integer key.
//
// A Segment is not safe for concurrent use. Other processes attached to the
// same key may write at any time; coordinating writers is up to the caller.
type Segment struct {
	cfg  *Config
	inst *instruments

	key      int
	capacity int
	native   NativeSegment
	data     []float32
}

// New returns an unattached Segment. A nil cfg means DefaultConfig().
func New(cfg *Config) (*Segment, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	return &Segment{cfg: cfg, inst: newInstruments(cfg)}, nil
}

// Key returns the key of the attached segment, 0 when not attached.
func (s *Segment) Key() int { return s.key }

// Capacity returns the number of elements of the attached segment.
func (s *Segment) Capacity() int { return s.capacity }

// Attached reports whether the last Allocate succeeded and Release was not called since.
func (s *Segment) Attached() bool { return s.native != nil }

// Name returns the OS object name, empty when not attached.
func (s *Segment) Name() string {
	if s.native == nil {
		return ""
	}
	return s.native.Name()
}

// Floats returns the attached elements. The slice aliases shared memory and
// is invalidated by the next Allocate or Release.
func (s *Segment) Floats() []float32 { return s.data }

// Allocate attaches the segment identified by key, sized for capacity
// elements, creating it if needed. A previously attached segment is detached
// first and destroyed when no other attachment remains.
//
// Invalid arguments leave the Segment untouched. Any other failure leaves it
// unattached with a capacity of 0. A failure to release the previous segment
// is returned wrapped in ErrTeardown, joined with the allocation result; the
// new segment may be attached all the same, which Attached tells.
func (s *Segment) Allocate(ctx context.Context, key, capacity int) (err error) {
	if key < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	if capacity < 0 || capacity > MaxCapacity {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	var teardownErr error
	ctx, span := s.inst.tracer.Start(ctx, "shm.Segment.Allocate", trace.WithAttributes(
		attribute.Int("shm.key", key),
		attribute.Int("shm.capacity", capacity),
	))
	defer func() {
		s.inst.recordAllocation(ctx, key, err)
		err = errors.Join(teardownErr, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if rerr := s.Release(); rerr != nil {
		// the old attachment is gone from our side whatever the error
		span.AddEvent("release previous segment failed", trace.WithAttributes(
			attribute.String("error", rerr.Error()),
		))
		teardownErr = fmt.Errorf("%w: %w", ErrTeardown, rerr)
	}

	size := capacity * ElementSize
	if s.cfg.CheckHostMemory {
		if err := canAllocateOnHost(uint64(size)); err != nil {
			return err
		}
	}
	native, err := s.attach(ctx, key, size)
	if err != nil {
		return fmt.Errorf("%w: key %d size %d: %w", ErrAllocate, key, capacity, err)
	}
	actual, err := native.ActualSize()
	if err == nil && (actual < size || len(native.Bytes())/ElementSize < capacity) {
		err = fmt.Errorf("%w: key %d granted %d bytes, requested %d", ErrTruncated, key, actual, size)
	}
	if err != nil {
		// the segment belongs to someone else; detach but never destroy it
		_ = native.Detach()
		if !errors.Is(err, ErrTruncated) {
			err = fmt.Errorf("%w: key %d: %w", ErrAllocate, key, err)
		}
		return err
	}

	s.key = key
	s.capacity = capacity
	s.native = native
	s.data = internalshm.Floats(native.Bytes(), capacity)
	s.inst.recordAttached(capacity)
	span.SetAttributes(attribute.String("shm.name", native.Name()))
	return nil
}

func (s *Segment) attach(ctx context.Context, key, size int) (NativeSegment, error) {
	var native NativeSegment
	op := func() error {
		n, err := s.cfg.Backend.Attach(ctx, MapOptions{Key: key, Size: size})
		if err != nil {
			if internalshm.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		native = n
		return nil
	}
	b := backoff.NewExponentialBackOff()
	if s.cfg.RetryInterval > 0 {
		b.InitialInterval = s.cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.AttachRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return native, nil
}

// Release detaches the segment and destroys the OS object if this was its
// last attachment. Releasing an unattached Segment is a no-op. The Segment is
// unattached afterwards even when an error is returned.
func (s *Segment) Release() error {
	if s.native == nil {
		return nil
	}
	native := s.native
	s.inst.recordAttached(-s.capacity)
	s.key = 0
	s.capacity = 0
	s.native = nil
	s.data = nil

	var errs []error
	if err := native.Detach(); err != nil {
		errs = append(errs, err)
	}
	if _, err := native.Destroy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Clear writes 0 to every element. It does nothing when not attached.
func (s *Segment) Clear() {
	clear(s.data)
}

// Read returns the element at index, truncated toward zero and clamped to
// [0, capacity-1]. ok is false when there is nothing to read.
func (s *Segment) Read(index float64) (v float32, ok bool) {
	if s.native == nil || s.capacity == 0 {
		return 0, false
	}
	return s.data[clampIndex(index, s.capacity)], true
}

func clampIndex(index float64, capacity int) int {
	last := capacity - 1
	switch {
	case math.IsNaN(index) || index <= 0:
		return 0
	case index >= float64(last):
		return last
	default:
		return int(index)
	}
}
