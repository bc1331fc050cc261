package shm

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// hostAvailable reports the memory the host can still hand out, in bytes.
var hostAvailable = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// canAllocateOnHost refuses sizes the host cannot back. When the host memory
// cannot be inspected the OS gets the final word.
func canAllocateOnHost(size uint64) error {
	avail, err := hostAvailable()
	if err != nil {
		return nil
	}
	if size > avail {
		return fmt.Errorf("%w: requested %d bytes, %d available", ErrNoSpace, size, avail)
	}
	return nil
}
