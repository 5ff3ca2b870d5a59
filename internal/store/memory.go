package store

import (
	"context"
	"sync"
)

// MemoryStore keeps collection documents in process memory. Used by tests
// and as the DSN-less development fallback.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	doc := make([]byte, len(data))
	copy(doc, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = doc
	return nil
}
