package domain

// AnswerStatus tags the outcome of an answer request.
// It replaces sentinel strings at the service layer; the HTTP adapter
// translates statuses to response codes and user-facing messages.
type AnswerStatus int

const (
	// AnswerReady means Text holds a model-generated answer.
	AnswerReady AnswerStatus = iota

	// AnswerInitializing means the service has not finished loading the
	// corpus. Callers should retry shortly; no model call was made.
	AnswerInitializing

	// AnswerFailed means the model call failed. Text holds the fixed
	// user-facing message, not the underlying error.
	AnswerFailed
)

// String returns the status name for logging.
func (s AnswerStatus) String() string {
	switch s {
	case AnswerReady:
		return "ready"
	case AnswerInitializing:
		return "initializing"
	case AnswerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Answer is the result of a question, tagged with its outcome.
type Answer struct {
	// Status tags the outcome.
	Status AnswerStatus

	// Text is the answer body. For non-ready statuses it carries the
	// fixed user-facing message.
	Text string

	// ModelRequested is the model name the caller asked for. It is
	// recorded for compatibility but does not affect routing.
	ModelRequested string

	// ModelUsed is the model that produced the answer, or
	// "initializing" when the service was not ready.
	ModelUsed string

	// FallbackUsed reports whether a fallback model produced the
	// answer. Always false with a single configured provider.
	FallbackUsed bool
}
