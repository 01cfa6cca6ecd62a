package driving

import "github.com/custodia-labs/queryd/internal/core/domain"

// DispatchResult reports the outcome of a background question.
type DispatchResult struct {
	// Record is the persisted record, nil when persistence failed.
	Record *domain.QueryRecord

	// Err is the persistence error, if any. Answer-level failures are
	// not errors here: they are recorded as degraded answers.
	Err error
}

// Dispatcher runs long questions in the background.
//
// The HTTP adapter discards the returned channel, preserving the
// fire-and-forget contract; tests and other callers may receive on it
// to await completion.
type Dispatcher interface {
	// Dispatch enqueues a question under the given caller-visible id.
	// The returned channel receives exactly one result and is then
	// closed. Dispatch never blocks the caller on the work itself.
	Dispatch(id, question string) <-chan DispatchResult

	// Stop waits for in-flight questions to finish. Further Dispatch
	// calls after Stop are rejected with an immediate error result.
	Stop()
}
