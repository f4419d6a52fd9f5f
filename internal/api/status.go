package api

import (
	"sync"

	"github.com/Ericlein/Eribot/internal/monitor"
)

// StatusStore keeps the latest scheduler snapshot for the status
// endpoint. It implements monitor.StatusSink; the scheduler publishes
// after every tick and HTTP handlers read concurrently.
type StatusStore struct {
	mu       sync.RWMutex
	snapshot monitor.StatusSnapshot
	hasData  bool
}

func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

func (s *StatusStore) Publish(snap monitor.StatusSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.hasData = true
}

// Latest returns the most recent snapshot. ok is false until the first
// tick completes.
func (s *StatusStore) Latest() (snap monitor.StatusSnapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.hasData
}
