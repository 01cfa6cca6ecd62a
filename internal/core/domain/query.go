package domain

import "time"

// QueryRecord is a persisted question/answer pair.
// Records are append-only and listed newest-first.
type QueryRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// DispatchID is the caller-visible id handed out when the question
	// was processed in the background ("q_<digits>"). Empty for
	// questions answered synchronously.
	DispatchID string

	// Question is the original question text, untruncated. Only the
	// copy sent to the model is subject to the length limit.
	Question string

	// Answer is the answer text, including fixed failure messages.
	Answer string

	// ModelRequested is the model the caller asked for.
	ModelRequested string

	// ModelUsed is the model that produced the answer.
	ModelUsed string

	// FallbackUsed reports whether a fallback model was used.
	FallbackUsed bool

	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// HistoryPage is one page of query records plus pagination metadata.
type HistoryPage struct {
	// Results holds the records for this page, newest first.
	Results []QueryRecord

	// Count is the total number of records in the store.
	Count int

	// Limit is the effective page size after clamping.
	Limit int

	// Offset is the effective offset after clamping.
	Offset int

	// HasMore reports whether records exist beyond this page.
	HasMore bool
}
