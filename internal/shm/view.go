package shm

import (
	"unsafe"
)

// ElementSize is the width in bytes of one segment element (a float32 sample).
const ElementSize = 4

// Floats reinterprets the first n elements of mem as float32 values, fewer
// when mem is shorter. Mappings returned by the OS are page aligned so the
// element alignment always holds.
func Floats(mem []byte, n int) []float32 {
	if n > len(mem)/ElementSize {
		n = len(mem) / ElementSize
	}
	if n <= 0 {
		return []float32{}
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&mem[0])), n)
}
