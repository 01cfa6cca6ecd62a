package domain

// Document is a single text file loaded into the corpus.
// Documents are immutable once loaded: the corpus is built in bulk at
// service initialization and never updated until process restart.
type Document struct {
	// Path is the location the document was read from.
	Path string

	// Content is the full text content.
	Content string
}

// ScoredDocument pairs a document with its retrieval relevance score.
type ScoredDocument struct {
	// Document is the matched document.
	Document Document

	// Score is the cosine similarity to the query, in [0, 1].
	Score float64
}
