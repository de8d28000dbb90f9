package store

import (
	"context"
	"sync"
)

// MemoryStore keeps records in a map. Contents are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return &rec, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	recs := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		recs = append(recs, &rec)
	}
	s.mu.RUnlock()

	sortNewest(recs)
	if n := listLimit(limit); len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
