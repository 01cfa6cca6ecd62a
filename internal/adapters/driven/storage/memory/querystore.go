// Package memory provides in-memory implementations of driven port
// interfaces, used for tests and ephemeral deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
)

// Ensure QueryStore implements the interface.
var _ driven.QueryStore = (*QueryStore)(nil)

// QueryStore is an in-memory implementation of driven.QueryStore.
type QueryStore struct {
	mu      sync.RWMutex
	records []domain.QueryRecord
}

// NewQueryStore creates a new in-memory query store.
func NewQueryStore() *QueryStore {
	return &QueryStore{}
}

// Save appends a query record.
func (s *QueryStore) Save(_ context.Context, record *domain.QueryRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// List returns a page of records ordered newest-first.
func (s *QueryStore) List(_ context.Context, limit, offset int) ([]domain.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.newestFirst()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ordered) {
		return []domain.QueryRecord{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ordered) {
		end = len(ordered)
	}
	return ordered[offset:end], nil
}

// Count returns the total number of records.
func (s *QueryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// FindByDispatchID returns the newest record with the given dispatch id.
func (s *QueryStore) FindByDispatchID(_ context.Context, dispatchID string) (*domain.QueryRecord, error) {
	if dispatchID == "" {
		return nil, domain.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.newestFirst() {
		if record.DispatchID == dispatchID {
			return &record, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SearchByQuestion returns records whose question contains the given
// substring, newest first.
func (s *QueryStore) SearchByQuestion(_ context.Context, substr string) ([]domain.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.QueryRecord
	for _, record := range s.newestFirst() {
		if strings.Contains(record.Question, substr) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// Close releases resources.
func (s *QueryStore) Close() error {
	return nil
}

// newestFirst returns a copy of the records sorted newest-first.
// Insertion order breaks timestamp ties (later insert wins).
// Callers must hold at least a read lock.
func (s *QueryStore) newestFirst() []domain.QueryRecord {
	ordered := make([]domain.QueryRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		ordered = append(ordered, s.records[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	return ordered
}
