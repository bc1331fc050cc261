//go:build windows

package shm

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// FileMappingBackend attaches named, paging-file backed file mappings.
// The OS destroys the mapping when its last handle is closed.
type FileMappingBackend struct{}

// DefaultBackend returns the file mapping backend.
func DefaultBackend() Backend {
	return FileMappingBackend{}
}

// MappingName derives the mapping object name from the key. The prefix is
// shared with the Pd shmem external so both can open the same segment.
func MappingName(key int) string {
	return fmt.Sprintf("puredata-FileMappingObject_%d", key)
}

// Attach creates or opens the mapping for opts.Key and maps a view of it.
func (FileMappingBackend) Attach(ctx context.Context, opts MapOptions) (NativeSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := uint64(requestSize(opts.Size))
	name := MappingName(opts.Key)
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping name %q", name)
	}
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE,
		uint32(size>>32), uint32(size&0xFFFFFFFF), namep)
	// an existing mapping comes back with a valid handle and ERROR_ALREADY_EXISTS
	if err != nil && !(h != 0 && errors.Is(err, windows.ERROR_ALREADY_EXISTS)) {
		return nil, errors.Wrapf(err, "CreateFileMapping %s", name)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, errors.Wrapf(err, "MapViewOfFile %s", name)
	}
	return &mappingSegment{
		name:   name,
		handle: h,
		addr:   addr,
		data:   unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)),
	}, nil
}

// IsTransient reports whether an attach error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY)
}

type mappingSegment struct {
	name   string
	handle windows.Handle
	addr   uintptr
	data   []byte
}

func (s *mappingSegment) Name() string {
	return s.name
}

func (s *mappingSegment) Bytes() []byte {
	return s.data
}

// ActualSize reports the committed view size, rounded to the page granularity.
func (s *mappingSegment) ActualSize() (int, error) {
	if s.addr == 0 {
		return 0, nil
	}
	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(s.addr, &info, unsafe.Sizeof(info)); err != nil {
		return 0, errors.Wrapf(err, "VirtualQuery %s", s.name)
	}
	return int(info.RegionSize), nil
}

func (s *mappingSegment) Detach() error {
	if s.addr == 0 {
		return nil
	}
	addr := s.addr
	s.addr = 0
	s.data = nil
	if err := windows.UnmapViewOfFile(addr); err != nil {
		return errors.Wrapf(err, "UnmapViewOfFile %s", s.name)
	}
	return nil
}

// Destroy closes the mapping handle. Reference counting is the kernel's job:
// the object survives while other processes hold handles.
func (s *mappingSegment) Destroy() (bool, error) {
	if s.handle == 0 {
		return false, nil
	}
	h := s.handle
	s.handle = 0
	if err := windows.CloseHandle(h); err != nil {
		return false, errors.Wrapf(err, "CloseHandle %s", s.name)
	}
	return true, nil
}
