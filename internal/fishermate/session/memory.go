package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps sessions in process memory. The map lock guards only
// membership; each session has its own lock, so distinct users never
// contend and one user's updates are applied one at a time.
type memoryStore struct {
	cfg *storeConfig

	mu      sync.Mutex
	entries map[string]*memoryEntry
	closed  bool
}

type memoryEntry struct {
	mu      sync.Mutex
	s       *Session
	removed bool // set by the sweep; holders must re-resolve the entry
}

func newMemoryStore(cfg *storeConfig) *memoryStore {
	return &memoryStore{cfg: cfg, entries: make(map[string]*memoryEntry)}
}

// entry returns the user's entry, inserting a fresh session if absent.
func (m *memoryStore) entry(userID string) (*memoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.entries[userID]
	if !ok {
		e = &memoryEntry{s: newSession(m.cfg, userID)}
		m.entries[userID] = e
	}
	return e, nil
}

// GetOrCreate implements Store.
func (m *memoryStore) GetOrCreate(ctx context.Context, userID string) (*Session, error) {
	return m.Update(ctx, userID, nil)
}

// Touch implements Store.
func (m *memoryStore) Touch(ctx context.Context, userID string) (*Session, error) {
	return m.Update(ctx, userID, func(s *Session) {
		touch(m.cfg.now())(s)
	})
}

// Update implements Store.
func (m *memoryStore) Update(ctx context.Context, userID string, fn func(*Session)) (*Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := m.entry(userID)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if e.removed {
			// Evicted between lookup and lock; the next lookup creates a
			// new session.
			e.mu.Unlock()
			continue
		}
		if fn != nil {
			fn(e.s)
			e.s.Version++
		}
		out := e.s.Clone()
		e.mu.Unlock()
		return out, nil
	}
}

// EvictStale implements Store. Sessions that are mid-update are skipped
// and considered again on the next sweep.
func (m *memoryStore) EvictStale(ctx context.Context, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	now := m.cfg.now()
	removed := 0
	for id, e := range m.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.s.Stale(now, ttl) {
			e.removed = true
			delete(m.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed, ctx.Err()
}

// Snapshot implements Store.
func (m *memoryStore) Snapshot(ctx context.Context) ([]*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	entries := make([]*memoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	out := make([]*Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.s.Clone())
		}
		e.mu.Unlock()
	}
	return out, ctx.Err()
}

// Close implements Store.
func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}
