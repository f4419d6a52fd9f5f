package notify

import (
	"context"
	"sync"
	"time"
)

// DedupeStore remembers recently delivered notification keys so
// identical notifications inside the window collapse into one message.
type DedupeStore interface {
	// Seen reports whether key was marked within its window.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records key for window. Callers mark only after a successful
	// delivery so a failed send does not suppress the next attempt.
	Mark(ctx context.Context, key string, window time.Duration) error
}

// MemoryDedupe is the in-process DedupeStore used when Redis is not
// configured. Expired entries are dropped lazily on lookup.
type MemoryDedupe struct {
	mu      sync.Mutex
	entries map[string]time.Time
	nowFn   func() time.Time
}

func NewMemoryDedupe() *MemoryDedupe {
	return &MemoryDedupe{
		entries: make(map[string]time.Time),
		nowFn:   time.Now,
	}
}

func (m *MemoryDedupe) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.nowFn().After(until) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

func (m *MemoryDedupe) Mark(_ context.Context, key string, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.nowFn().Add(window)
	return nil
}
