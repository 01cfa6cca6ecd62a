package tfidf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/queryd/internal/core/domain"
)

func corpus() []domain.Document {
	return []domain.Document{
		{Path: "go.txt", Content: "Go is a compiled language with goroutines and channels"},
		{Path: "python.txt", Content: "Python is an interpreted language popular for scripting"},
		{Path: "cooking.txt", Content: "Slice the onions and simmer the broth for an hour"},
	}
}

func TestFit_EmptyCorpus(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(nil))

	assert.False(t, idx.Fitted())
	assert.Empty(t, idx.TopK("anything", 3))
}

func TestTopK_Unfitted(t *testing.T) {
	idx := NewIndex()
	assert.Empty(t, idx.TopK("query", 3))
}

func TestTopK_RanksByRelevance(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(corpus()))
	require.True(t, idx.Fitted())

	results := idx.TopK("goroutines and channels in Go", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "go.txt", results[0].Document.Path)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestTopK_AtMostMinKN(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(corpus()))

	assert.Len(t, idx.TopK("language", 10), 3)
	assert.Len(t, idx.TopK("language", 2), 2)
	assert.Empty(t, idx.TopK("language", 0))
}

func TestTopK_NoDuplicates_NonIncreasingScores(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(corpus()))

	results := idx.TopK("interpreted compiled language", 3)
	require.Len(t, results, 3)

	seen := make(map[string]bool)
	for i, r := range results {
		assert.False(t, seen[r.Document.Path], "duplicate document %s", r.Document.Path)
		seen[r.Document.Path] = true
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score)
		}
	}
}

func TestTopK_OutOfVocabularyQuery(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(corpus()))

	// Every query term is unknown: all scores are zero but documents
	// are still returned in corpus order.
	results := idx.TopK("zzz qqq xxx", 3)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.Score)
	}
	assert.Equal(t, "go.txt", results[0].Document.Path)
	assert.Equal(t, "python.txt", results[1].Document.Path)
	assert.Equal(t, "cooking.txt", results[2].Document.Path)
}

func TestTopK_TieBreakIsCorpusOrder(t *testing.T) {
	idx := NewIndex()
	docs := make([]domain.Document, 5)
	for i := range docs {
		// Identical content: every document ties on any query.
		docs[i] = domain.Document{
			Path:    fmt.Sprintf("doc-%d.txt", i),
			Content: "identical content everywhere",
		}
	}
	require.NoError(t, idx.Fit(docs))

	results := idx.TopK("identical content", 5)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("doc-%d.txt", i), r.Document.Path)
	}
}

func TestFit_ReplacesPreviousState(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Fit(corpus()))
	require.True(t, idx.Fitted())

	require.NoError(t, idx.Fit([]domain.Document{{Path: "only.txt", Content: "single document"}}))
	results := idx.TopK("single", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "only.txt", results[0].Document.Path)

	require.NoError(t, idx.Fit(nil))
	assert.False(t, idx.Fitted())
}
