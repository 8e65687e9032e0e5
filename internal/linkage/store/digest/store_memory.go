package digest

import (
	"context"
	"fmt"
	"sync"

	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
)

// InMemoryStore keeps the last digest in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	last *Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Last(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Record{}, fmt.Errorf("last digest: %w", sentinel.ErrNotFound)
	}
	return *s.last, nil
}

func (s *InMemoryStore) Record(_ context.Context, rec Record) error {
	if rec.Digest == "" {
		return fmt.Errorf("record digest: digest is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &rec
	return nil
}
