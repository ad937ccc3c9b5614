package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps audit events in memory, append-only per external ref.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ExternalRef] = append(s.events[event.ExternalRef], event)
	return nil
}

func (s *MemoryStore) ListByExternalRef(_ context.Context, externalRef string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[externalRef]...), nil
}
