package driven

import "github.com/custodia-labs/queryd/internal/core/domain"

// DocumentIndex builds a lexical index over a corpus and ranks
// documents against free-text queries.
//
// The vocabulary is frozen at Fit time; there is no incremental update
// path. Corpus and index are always rebuilt together by the owning
// service, so implementations need not be safe for concurrent Fit, but
// TopK must be safe for concurrent use after a successful Fit.
type DocumentIndex interface {
	// Fit builds the index over the given documents, replacing any
	// previous state. Fitting an empty corpus is not an error; the
	// index simply stays unfitted and TopK returns nothing.
	Fit(docs []domain.Document) error

	// TopK returns up to k documents ranked by descending similarity
	// to the query. Ties are broken by original corpus order. An
	// unfitted index returns an empty slice, never an error.
	TopK(query string, k int) []domain.ScoredDocument

	// Fitted reports whether a non-empty corpus has been indexed.
	Fitted() bool
}
