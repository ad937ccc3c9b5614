package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"personadesk/internal/persona"
	"personadesk/pkg/platform/sentinel"
)

// MemoryStore keeps persona records in memory behind one mutex, which also
// serializes upserts per key. Used in tests and when DATABASE_URL is unset.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]persona.Record
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]persona.Record)}
}

func (s *MemoryStore) FindByExternalRef(_ context.Context, externalRef string) (*persona.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[externalRef]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := cloneRecord(record)
	return &copied, nil
}

func (s *MemoryStore) FindByExternalRefs(_ context.Context, externalRefs []string) (map[string]*persona.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]*persona.Record, len(externalRefs))
	for _, ref := range externalRefs {
		if record, ok := s.records[ref]; ok {
			copied := cloneRecord(record)
			found[ref] = &copied
		}
	}
	return found, nil
}

func (s *MemoryStore) Upsert(_ context.Context, record *persona.Record) (*persona.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneRecord(*record)
	if existing, ok := s.records[record.ExternalRef]; ok {
		stored.LocalID = existing.LocalID
	} else {
		stored.LocalID = uuid.New()
	}
	stored.UpdatedAt = time.Now().UTC()

	s.records[record.ExternalRef] = stored
	result := cloneRecord(stored)
	return &result, nil
}

// cloneRecord deep-copies the slices so callers can't mutate stored state.
func cloneRecord(record persona.Record) persona.Record {
	record.PainPoints = append([]string(nil), record.PainPoints...)
	record.Goals = append([]string(nil), record.Goals...)
	if record.LastResearched != nil {
		at := *record.LastResearched
		record.LastResearched = &at
	}
	return record
}
