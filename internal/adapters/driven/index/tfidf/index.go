// Package tfidf provides a document index using term-frequency /
// inverse-document-frequency weighting and cosine similarity ranking.
package tfidf

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// Index is a tf-idf vector space over a fixed corpus.
//
// The vocabulary is frozen at Fit time. Document vectors are
// L2-normalised so cosine similarity reduces to a dot product.
// Read methods are safe for concurrent use after Fit; Fit itself is
// serialised by the owning service.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	rows       [][]float64
	docs       []domain.Document
	fitted     bool

	tokenPattern *regexp.Regexp
}

// NewIndex creates an unfitted tf-idf index.
func NewIndex() *Index {
	return &Index{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
	}
}

// Fit builds the vocabulary, IDF values and document vectors from the
// given corpus, replacing any previous state. An empty corpus leaves
// the index unfitted without error.
func (x *Index) Fit(docs []domain.Document) error {
	x.vocabulary = make(map[string]int)
	x.idf = nil
	x.rows = nil
	x.docs = nil
	x.fitted = false

	if len(docs) == 0 {
		logger.Debug("tfidf: empty corpus, index not built")
		return nil
	}

	// Document frequencies over unique terms per document.
	df := make(map[string]int)
	tokenised := make([][]string, len(docs))
	for i, doc := range docs {
		tokens := x.tokenize(doc.Content)
		tokenised[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Sorted terms give a stable column order.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	x.vocabulary = make(map[string]int, len(terms))
	x.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		x.vocabulary[term] = i
		// Smoothed IDF, matching the usual vectorizer formulation.
		x.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	x.rows = make([][]float64, len(docs))
	for i, tokens := range tokenised {
		x.rows[i] = x.vectorize(tokens)
	}
	x.docs = append([]domain.Document(nil), docs...)
	x.fitted = true

	logger.Debug("tfidf: indexed %d documents, %d terms", len(docs), len(terms))
	return nil
}

// Fitted reports whether a non-empty corpus has been indexed.
func (x *Index) Fitted() bool {
	return x.fitted
}

// TopK returns up to k documents ranked by descending cosine
// similarity to the query. Out-of-vocabulary query terms are dropped.
// Ties keep original corpus order; an unfitted index returns nothing.
func (x *Index) TopK(query string, k int) []domain.ScoredDocument {
	if !x.fitted || k <= 0 {
		return nil
	}

	queryVec := x.vectorize(x.tokenize(query))

	scored := make([]domain.ScoredDocument, len(x.docs))
	for i := range x.docs {
		scored[i] = domain.ScoredDocument{
			Document: x.docs[i],
			Score:    dot(queryVec, x.rows[i]),
		}
	}

	// Stable sort keeps ascending corpus order within equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// vectorize computes the L2-normalised tf-idf vector for the tokens.
func (x *Index) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(x.idf))
	total := 0
	for _, tok := range tokens {
		if idx, ok := x.vocabulary[tok]; ok {
			vec[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	norm := 0.0
	for idx := range vec {
		if vec[idx] == 0 {
			continue
		}
		vec[idx] = (vec[idx] / float64(total)) * x.idf[idx]
		norm += vec[idx] * vec[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (x *Index) tokenize(text string) []string {
	return x.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
