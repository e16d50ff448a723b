package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	owner     string
	expiresAt time.Time
}

// MemoryBackend keeps locks in process memory. It only serializes callers of
// the same process.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (b *MemoryBackend) TryAcquire(_ context.Context, key, owner string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if e, ok := b.entries[key]; ok && e.owner != owner && now.Before(e.expiresAt) {
		return ErrLocked
	}
	b.entries[key] = memoryEntry{owner: owner, expiresAt: now.Add(ttl)}
	return nil
}

func (b *MemoryBackend) Release(_ context.Context, key, owner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[key]; ok && e.owner == owner {
		delete(b.entries, key)
	}
	return nil
}
