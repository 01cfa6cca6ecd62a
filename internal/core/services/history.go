package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/core/ports/driving"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// Pagination bounds for history listings.
const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// HistoryService serves persisted query records.
type HistoryService struct {
	store driven.QueryStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.QueryStore) *HistoryService {
	return &HistoryService{store: store}
}

// History returns a page of records newest-first. Limit defaults to 10
// and is clamped to [1,50]; negative offsets are treated as zero.
func (s *HistoryService) History(ctx context.Context, limit, offset int) (domain.HistoryPage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("listing history: %w", err)
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("counting history: %w", err)
	}

	return domain.HistoryPage{
		Results: records,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < count,
	}, nil
}

// Status looks up the record for a background dispatch id: first by
// the persisted dispatch id, then by newest-first substring match
// against question text for records written without one. Returns
// domain.ErrNotFound while the question is still processing.
func (s *HistoryService) Status(ctx context.Context, id string) (*domain.QueryRecord, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	record, err := s.store.FindByDispatchID(ctx, id)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up dispatch id %s: %w", id, err)
	}

	matches, err := s.store.SearchByQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("searching question text for %s: %w", id, err)
	}
	if len(matches) == 0 {
		logger.Debug("history: no record found for id %s", id)
		return nil, domain.ErrNotFound
	}
	return &matches[0], nil
}
