package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/queryd/internal/core/domain"
)

// AnswerService answers questions using retrieved document context.
type AnswerService interface {
	// Ready attempts lazy initialization if needed. It returns nil once
	// the corpus and index are loaded, domain.ErrInitializing while
	// another caller is loading, and the underlying error when the
	// attempt performed by this caller fails. It never blocks waiting
	// for another caller's load.
	Ready(ctx context.Context) error

	// Ask answers a question. The timeout bounds the model call only,
	// not initialization. The outcome is tagged on the returned Answer;
	// Ask does not return an error because every failure mode has a
	// defined degraded answer.
	Ask(ctx context.Context, question string, timeout time.Duration) domain.Answer

	// AskWithModel is Ask with a requested model name, accepted for
	// compatibility and recorded in the result but not used for
	// routing: all questions go to the one configured provider.
	AskWithModel(ctx context.Context, question, model string, timeout time.Duration) domain.Answer
}

// HistoryService serves persisted query records.
type HistoryService interface {
	// History returns a page of records newest-first. The limit is
	// clamped to [1,50] with a default of 10; negative offsets are
	// treated as zero.
	History(ctx context.Context, limit, offset int) (domain.HistoryPage, error)

	// Status looks up the record for a background dispatch id. The
	// lookup matches the persisted dispatch id first and falls back to
	// a newest-first substring match against question text. Returns
	// domain.ErrNotFound while the question is still processing.
	Status(ctx context.Context, id string) (*domain.QueryRecord, error)
}
