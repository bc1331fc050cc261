package shm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBackendSharesSegment(t *testing.T) {
	b := NewProcessBackend()
	ctx := context.Background()

	s1, err := b.Attach(ctx, MapOptions{Key: 7, Size: 16})
	require.NoError(t, err)
	s2, err := b.Attach(ctx, MapOptions{Key: 7, Size: 16})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Attachments(7))

	s1.Bytes()[3] = 42
	assert.Equal(t, byte(42), s2.Bytes()[3])

	require.NoError(t, s1.Detach())
	destroyed, err := s1.Destroy()
	require.NoError(t, err)
	assert.False(t, destroyed, "segment still attached by s2")
	assert.Equal(t, 1, b.Attachments(7))

	require.NoError(t, s2.Detach())
	destroyed, err = s2.Destroy()
	require.NoError(t, err)
	assert.True(t, destroyed)
	assert.Equal(t, -1, b.Attachments(7))
}

func TestProcessBackendReusesSmallerSegment(t *testing.T) {
	b := NewProcessBackend()
	ctx := context.Background()

	small, err := b.Attach(ctx, MapOptions{Key: 3, Size: 8})
	require.NoError(t, err)
	defer small.Detach()

	big, err := b.Attach(ctx, MapOptions{Key: 3, Size: 64})
	require.NoError(t, err)
	size, err := big.ActualSize()
	require.NoError(t, err)
	assert.Equal(t, 8, size)
}

func TestProcessBackendDetachTwice(t *testing.T) {
	b := NewProcessBackend()
	s, err := b.Attach(context.Background(), MapOptions{Key: 1, Size: 0})
	require.NoError(t, err)
	size, err := s.ActualSize()
	require.NoError(t, err)
	assert.Equal(t, minSegmentSize, size)

	assert.NoError(t, s.Detach())
	assert.NoError(t, s.Detach())
	assert.Nil(t, s.Bytes())
	assert.Equal(t, 0, b.Attachments(1))
}

func TestProcessBackendCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProcessBackend().Attach(ctx, MapOptions{Key: 1, Size: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFloatsView(t *testing.T) {
	mem := make([]byte, 16)
	f := Floats(mem, 4)
	require.Len(t, f, 4)
	f[2] = 1.5
	assert.Equal(t, float32(1.5), Floats(mem, 4)[2])

	assert.Len(t, Floats(mem, 10), 4, "view is bounded by the mapping")
	assert.Empty(t, Floats(mem, 0))
	assert.Empty(t, Floats(nil, 3))
	assert.Len(t, Floats(mem, math.MaxInt), 4, "huge counts do not overflow the bound")
}
