package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"call-audit-go/internal/types"
)

// memoryStore mirrors the Mongo pagination semantics in-process. It backs
// tests and local runs without a database.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]types.CallRecord
}

func NewMemory() Store {
	return &memoryStore{records: map[string]types.CallRecord{}}
}

func (s *memoryStore) Put(ctx context.Context, rec types.CallRecord) error {
	if rec.CallID == "" {
		return fmt.Errorf("store: empty call_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.CallID]; exists {
		return fmt.Errorf("store: call %s already recorded", rec.CallID)
	}
	s.records[rec.CallID] = rec
	return nil
}

func (s *memoryStore) Get(ctx context.Context, callID string) (types.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[callID]
	if !ok {
		return types.CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *memoryStore) Scan(ctx context.Context, token string, limit int) ([]types.CallRecord, string, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		if id > token {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var page []types.CallRecord
	for _, id := range ids {
		if len(page) == limit {
			break
		}
		page = append(page, s.records[id])
	}
	s.mu.RUnlock()

	next := ""
	if len(page) == limit && len(ids) >= limit {
		next = page[len(page)-1].CallID
	}
	return page, next, nil
}
