package shm

import (
	"fmt"
)

// Buffer is an externally owned array of elements used as the source or
// destination of a transfer. It is only referenced for the duration of a call.
type Buffer interface {
	Floats() []float32
}

// Redrawer is implemented by buffers whose owner must refresh after CopyFrom
// wrote into them.
type Redrawer interface {
	Redraw()
}

// Values adapts a plain slice to Buffer.
type Values []float32

// Floats implements Buffer.
func (v Values) Floats() []float32 { return v }

// clampCount returns how many elements can be copied between an array of
// capacity elements starting at capOffset and a buffer of length elements
// starting at bufOffset, limited to maxCount. It never returns a count that
// would step outside either side.
func clampCount(capacity, capOffset, length, bufOffset, maxCount int) int {
	if capOffset < 0 || bufOffset < 0 {
		return 0
	}
	n := min(capacity-capOffset, length-bufOffset, maxCount)
	if n < 0 {
		return 0
	}
	return n
}

// CopyInto copies up to maxCount elements from src[srcOffset:] into the
// segment at destOffset and returns how many were copied. The count is
// silently reduced to what fits on both sides; callers needing all-or-nothing
// semantics compare it with maxCount or use CopyIntoExact.
func (s *Segment) CopyInto(src Buffer, srcOffset, destOffset, maxCount int) (int, error) {
	if s.native == nil {
		return 0, ErrNotAttached
	}
	vec := src.Floats()
	n := clampCount(s.capacity, destOffset, len(vec), srcOffset, maxCount)
	if n > 0 {
		copy(s.data[destOffset:destOffset+n], vec[srcOffset:srcOffset+n])
	}
	s.inst.recordCopy(directionIn, n)
	return n, nil
}

// CopyFrom copies up to maxCount elements of the segment starting at
// srcOffset into dest[destOffset:] and returns how many were copied. dest is
// redrawn afterwards when it implements Redrawer.
func (s *Segment) CopyFrom(dest Buffer, srcOffset, destOffset, maxCount int) (int, error) {
	if s.native == nil {
		return 0, ErrNotAttached
	}
	vec := dest.Floats()
	n := clampCount(s.capacity, srcOffset, len(vec), destOffset, maxCount)
	if n > 0 {
		copy(vec[destOffset:destOffset+n], s.data[srcOffset:srcOffset+n])
	}
	if r, ok := dest.(Redrawer); ok {
		r.Redraw()
	}
	s.inst.recordCopy(directionOut, n)
	return n, nil
}

// WriteValues writes values into the segment starting at destOffset.
func (s *Segment) WriteValues(destOffset int, values []float32) (int, error) {
	return s.CopyInto(Values(values), 0, destOffset, len(values))
}

// CopyIntoExact is CopyInto that reports ErrShortCopy when fewer than count
// elements fit. The elements that did fit are still copied.
func (s *Segment) CopyIntoExact(src Buffer, srcOffset, destOffset, count int) (int, error) {
	n, err := s.CopyInto(src, srcOffset, destOffset, count)
	if err == nil && n < count {
		err = fmt.Errorf("%w: %d of %d elements", ErrShortCopy, n, count)
	}
	return n, err
}

// CopyFromExact is CopyFrom that reports ErrShortCopy when fewer than count
// elements fit.
func (s *Segment) CopyFromExact(dest Buffer, srcOffset, destOffset, count int) (int, error) {
	n, err := s.CopyFrom(dest, srcOffset, destOffset, count)
	if err == nil && n < count {
		err = fmt.Errorf("%w: %d of %d elements", ErrShortCopy, n, count)
	}
	return n, err
}
