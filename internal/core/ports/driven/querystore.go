package driven

import (
	"context"

	"github.com/custodia-labs/queryd/internal/core/domain"
)

// QueryStore persists query records and supports the history and
// status lookups. Records are append-only; all listings are ordered
// newest-first.
type QueryStore interface {
	// Save appends a record. The caller assigns ID and CreatedAt.
	Save(ctx context.Context, record *domain.QueryRecord) error

	// List returns a page of records ordered newest-first.
	List(ctx context.Context, limit, offset int) ([]domain.QueryRecord, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// FindByDispatchID returns the newest record carrying the given
	// dispatch id, or domain.ErrNotFound.
	FindByDispatchID(ctx context.Context, dispatchID string) (*domain.QueryRecord, error)

	// SearchByQuestion returns records whose question text contains
	// the given substring, newest first.
	SearchByQuestion(ctx context.Context, substr string) ([]domain.QueryRecord, error)

	// Close releases resources.
	Close() error
}
