// Package lock provides per-key advisory locks used to serialize the
// check-then-persist sequence of a checkout against the same bookables.
package lock

import (
	apperrors "bookly/pkg/errors"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned by a Backend when the key is held by another owner.
var ErrLocked = errors.New("lock is held by another owner")

// Backend acquires and releases a single key for an owner token.
type Backend interface {
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) error
	Release(ctx context.Context, key, owner string) error
}

// Key builds the lock key for one bookable of a tenant.
func Key(tenant, bookableID string) string {
	return "booking-lock:" + tenant + ":" + bookableID
}

// EventKey guards the attendee limit shared by all tickets of an event.
func EventKey(tenant, eventID string) string {
	return Key(tenant, "event:"+eventID)
}

type Manager struct {
	backend      Backend
	ttl          time.Duration
	wait         time.Duration
	pollInterval time.Duration
}

func NewManager(backend Backend, ttl, wait time.Duration) *Manager {
	return &Manager{
		backend:      backend,
		ttl:          ttl,
		wait:         wait,
		pollInterval: 25 * time.Millisecond,
	}
}

// Held is a set of acquired keys sharing one owner token.
type Held struct {
	manager *Manager
	owner   string
	keys    []string
}

// Acquire takes every key, in sorted order so that concurrent callers with
// overlapping key sets cannot deadlock. Duplicate keys are collapsed. If any key
// cannot be taken within the wait budget, the keys taken so far are released
// and a Conflict error is returned.
func (m *Manager) Acquire(ctx context.Context, keys []string) (*Held, error) {
	held := &Held{manager: m, owner: uuid.New().String()}

	for _, key := range dedupeSorted(keys) {
		if err := m.acquireOne(ctx, key, held.owner); err != nil {
			held.Release(context.WithoutCancel(ctx))
			return nil, err
		}
		held.keys = append(held.keys, key)
	}

	return held, nil
}

func (m *Manager) acquireOne(ctx context.Context, key, owner string) error {
	deadline := time.Now().Add(m.wait)
	for {
		err := m.backend.TryAcquire(ctx, key, owner, m.ttl)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrLocked) {
			return fmt.Errorf("failed to acquire %s: %w", key, err)
		}
		if time.Now().After(deadline) {
			return apperrors.Conflict("Another checkout for this bookable is in progress, please retry").
				WithDetails(map[string]any{"lock": key})
		}

		select {
		case <-ctx.Done():
			return apperrors.Timeout("Timed out waiting for booking lock")
		case <-time.After(m.pollInterval):
		}
	}
}

// Release frees the held keys in reverse order and returns the first error.
func (h *Held) Release(ctx context.Context) error {
	var firstErr error
	for i := len(h.keys) - 1; i >= 0; i-- {
		if err := h.manager.backend.Release(ctx, h.keys[i], h.owner); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.keys = nil
	return firstErr
}

func (h *Held) Keys() []string {
	return append([]string(nil), h.keys...)
}

func dedupeSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
