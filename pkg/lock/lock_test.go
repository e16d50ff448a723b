package lock

import (
	apperrors "bookly/pkg/errors"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	*MemoryBackend
	mu       sync.Mutex
	acquired []string
	failOn   string
}

func (b *recordingBackend) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	if key == b.failOn {
		return errors.New("backend down")
	}
	if err := b.MemoryBackend.TryAcquire(ctx, key, owner, ttl); err != nil {
		return err
	}
	b.mu.Lock()
	b.acquired = append(b.acquired, key)
	b.mu.Unlock()
	return nil
}

func TestManager_AcquireSortsAndDedupes(t *testing.T) {
	backend := &recordingBackend{MemoryBackend: NewMemoryBackend()}
	m := NewManager(backend, time.Second, 0)

	held, err := m.Acquire(context.Background(), []string{"c", "a", "b", "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, backend.acquired)
	assert.Equal(t, []string{"a", "b", "c"}, held.Keys())
	require.NoError(t, held.Release(context.Background()))
	assert.Empty(t, backend.entries)
}

func TestManager_ContentionReturnsConflict(t *testing.T) {
	backend := NewMemoryBackend()
	m := NewManager(backend, time.Minute, 50*time.Millisecond)

	first, err := m.Acquire(context.Background(), []string{Key("t1", "room")})
	require.NoError(t, err)

	_, err = m.Acquire(context.Background(), []string{Key("t1", "desk"), Key("t1", "room")})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	// the key taken before the conflict is released again
	_, stillHeld := backend.entries[Key("t1", "desk")]
	assert.False(t, stillHeld)

	require.NoError(t, first.Release(context.Background()))

	second, err := m.Acquire(context.Background(), []string{Key("t1", "room")})
	require.NoError(t, err)
	require.NoError(t, second.Release(context.Background()))
}

func TestManager_WaitsForRelease(t *testing.T) {
	backend := NewMemoryBackend()
	m := NewManager(backend, time.Minute, 2*time.Second)

	first, err := m.Acquire(context.Background(), []string{"k"})
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = first.Release(context.Background())
	}()

	second, err := m.Acquire(context.Background(), []string{"k"})
	require.NoError(t, err)
	require.NoError(t, second.Release(context.Background()))
}

func TestManager_BackendErrorReleasesTakenKeys(t *testing.T) {
	backend := &recordingBackend{MemoryBackend: NewMemoryBackend(), failOn: "b"}
	m := NewManager(backend, time.Minute, 0)

	_, err := m.Acquire(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err))
	assert.Empty(t, backend.entries)
}

func TestMemoryBackend_ExpiredLockCanBeTaken(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.TryAcquire(context.Background(), "k", "a", time.Second))
	assert.ErrorIs(t, backend.TryAcquire(context.Background(), "k", "b", time.Second), ErrLocked)

	now = now.Add(2 * time.Second)
	require.NoError(t, backend.TryAcquire(context.Background(), "k", "b", time.Second))

	// a stale owner cannot release someone else's lock
	require.NoError(t, backend.Release(context.Background(), "k", "a"))
	assert.ErrorIs(t, backend.TryAcquire(context.Background(), "k", "c", time.Second), ErrLocked)
}
