package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/queryd/internal/core/domain"
)

func seed(t *testing.T, store *QueryStore, n int) {
	t.Helper()
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		require.NoError(t, store.Save(context.Background(), &domain.QueryRecord{
			ID:        fmt.Sprintf("id-%d", i),
			Question:  fmt.Sprintf("question %d", i),
			Answer:    "answer",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestSave_RequiresID(t *testing.T) {
	store := NewQueryStore()
	assert.ErrorIs(t, store.Save(context.Background(), &domain.QueryRecord{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestList_NewestFirstWithPagination(t *testing.T) {
	store := NewQueryStore()
	seed(t, store, 12)
	ctx := context.Background()

	page, err := store.List(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "question 11", page[0].Question)

	page, err = store.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = store.List(ctx, 5, 50)
	require.NoError(t, err)
	assert.Empty(t, page)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestFindByDispatchID(t *testing.T) {
	store := NewQueryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.QueryRecord{
		ID:         "id-1",
		DispatchID: "q_1700000001",
		Question:   "background question",
		CreatedAt:  time.Now().UTC(),
	}))

	found, err := store.FindByDispatchID(ctx, "q_1700000001")
	require.NoError(t, err)
	assert.Equal(t, "id-1", found.ID)

	_, err = store.FindByDispatchID(ctx, "q_unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchByQuestion(t *testing.T) {
	store := NewQueryStore()
	seed(t, store, 3)

	matches, err := store.SearchByQuestion(context.Background(), "question 1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "id-1", matches[0].ID)

	matches, err = store.SearchByQuestion(context.Background(), "question")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Equal(t, "question 2", matches[0].Question)
}
