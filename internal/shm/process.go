package shm

import (
	"context"
	"fmt"
	"sync"
)

// ProcessBackend keeps segments in the heap of the current process. Segments
// are shared by every attachment made through the same backend and follow the
// same rules as the OS backends: an existing segment is reused as-is, even if
// it is smaller than requested, and Destroy only removes unattached segments.
type ProcessBackend struct {
	mu       sync.Mutex
	segments map[int]*processObject
}

type processObject struct {
	mem      []byte
	attached int
}

// NewProcessBackend returns an empty process-local backend.
func NewProcessBackend() *ProcessBackend {
	return &ProcessBackend{segments: make(map[int]*processObject)}
}

// Attach implements Backend.
func (b *ProcessBackend) Attach(ctx context.Context, opts MapOptions) (NativeSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Size < 0 {
		return nil, fmt.Errorf("process segment key %d: negative size %d", opts.Key, opts.Size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.segments[opts.Key]
	if !ok {
		obj = &processObject{mem: make([]byte, requestSize(opts.Size))}
		b.segments[opts.Key] = obj
	}
	obj.attached++
	return &processSegment{backend: b, key: opts.Key, obj: obj, data: obj.mem}, nil
}

// Attachments returns the number of live attachments of key, or -1 when no
// segment exists for it.
func (b *ProcessBackend) Attachments(key int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.segments[key]
	if !ok {
		return -1
	}
	return obj.attached
}

type processSegment struct {
	backend *ProcessBackend
	key     int
	obj     *processObject
	data    []byte
}

func (s *processSegment) Name() string {
	return fmt.Sprintf("process key=%d", s.key)
}

func (s *processSegment) Bytes() []byte {
	return s.data
}

func (s *processSegment) ActualSize() (int, error) {
	return len(s.obj.mem), nil
}

func (s *processSegment) Detach() error {
	if s.data == nil {
		return nil
	}
	s.data = nil
	s.backend.mu.Lock()
	s.obj.attached--
	s.backend.mu.Unlock()
	return nil
}

func (s *processSegment) Destroy() (bool, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	if s.obj.attached > 0 || s.backend.segments[s.key] != s.obj {
		return false, nil
	}
	delete(s.backend.segments, s.key)
	return true, nil
}
