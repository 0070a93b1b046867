package auth

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns a process-local token table. Expired entries are only removed on lookup.
func NewMemoryStore() TokenStore {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Put(_ context.Context, token string, rec Record) error {
	s.mu.Lock()
	s.records[token] = rec
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, token string) (Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[token]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[token]
	delete(s.records, token)
	return ok, nil
}

func (s *memoryStore) Close() error { return nil }
