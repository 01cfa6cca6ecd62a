package driven

import (
	"context"

	"github.com/custodia-labs/queryd/internal/core/domain"
)

// CorpusLoader reads the document corpus from its backing source.
//
// Load is best-effort: individual unreadable files are logged and
// skipped, and a missing root yields an empty corpus with a nil error.
// A non-nil error is reserved for failures that should abort service
// initialization entirely.
type CorpusLoader interface {
	// Load returns every readable document under the configured root.
	// The returned slice may be empty and its order is deterministic.
	Load(ctx context.Context) ([]domain.Document, error)
}
