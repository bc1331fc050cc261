//go:build linux || darwin

package shm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// segmentPerm lets the owner and others read and write.
const segmentPerm = 0o606

// SysvBackend attaches System V shared memory segments keyed by an integer.
type SysvBackend struct{}

// DefaultBackend returns the System V backend.
func DefaultBackend() Backend {
	return SysvBackend{}
}

// Attach creates the segment for opts.Key if it does not exist and attaches it.
func (SysvBackend) Attach(ctx context.Context, opts MapOptions) (NativeSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := requestSize(opts.Size)
	created := true
	id, err := unix.SysvShmGet(opts.Key, size, unix.IPC_CREAT|unix.IPC_EXCL|segmentPerm)
	if errors.Is(err, unix.EEXIST) {
		created = false
		id, err = unix.SysvShmGet(opts.Key, size, unix.IPC_CREAT|segmentPerm)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "shmget key %d size %d", opts.Key, size)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		if created {
			_, _ = unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		}
		return nil, errors.Wrapf(err, "shmat id %d", id)
	}
	return &sysvSegment{key: opts.Key, id: id, data: data}, nil
}

// IsTransient reports whether an attach error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}

type sysvSegment struct {
	key  int
	id   int
	data []byte
}

func (s *sysvSegment) Name() string {
	return fmt.Sprintf("sysv key=%d id=%d", s.key, s.id)
}

func (s *sysvSegment) Bytes() []byte {
	return s.data
}

func (s *sysvSegment) stat() (*unix.SysvShmDesc, error) {
	var desc unix.SysvShmDesc
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_STAT, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (s *sysvSegment) ActualSize() (int, error) {
	desc, err := s.stat()
	if err != nil {
		return 0, errors.Wrapf(err, "shmctl IPC_STAT id %d", s.id)
	}
	return int(desc.Segsz), nil
}

func (s *sysvSegment) Detach() error {
	if s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	if err := unix.SysvShmDetach(data); err != nil {
		return errors.Wrapf(err, "shmdt id %d", s.id)
	}
	return nil
}

// Destroy removes the segment when its attachment count dropped to zero.
// A segment already removed by another process is not an error.
func (s *sysvSegment) Destroy() (bool, error) {
	desc, err := s.stat()
	if err != nil {
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EIDRM) {
			return false, nil
		}
		return false, errors.Wrapf(err, "shmctl IPC_STAT id %d", s.id)
	}
	if desc.Nattch > 0 {
		return false, nil
	}
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
		return false, errors.Wrapf(err, "shmctl IPC_RMID id %d", s.id)
	}
	return true, nil
}
