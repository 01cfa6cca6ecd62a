package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/queryd/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driving"
)

// fakeAnswerer returns a canned answer for any question.
type fakeAnswerer struct {
	mu          sync.Mutex
	questions   []string
	lastTimeout time.Duration
}

func (f *fakeAnswerer) Ready(context.Context) error { return nil }

func (f *fakeAnswerer) Ask(ctx context.Context, question string, timeout time.Duration) domain.Answer {
	return f.AskWithModel(ctx, question, "", timeout)
}

func (f *fakeAnswerer) AskWithModel(_ context.Context, question, _ string, timeout time.Duration) domain.Answer {
	f.mu.Lock()
	f.questions = append(f.questions, question)
	f.lastTimeout = timeout
	f.mu.Unlock()
	return domain.Answer{
		Status:         domain.AnswerReady,
		Text:           "background answer",
		ModelRequested: "gemini-1.5-flash",
		ModelUsed:      "gemini-1.5-flash",
	}
}

// failingStore rejects every save.
type failingStore struct {
	*memory.QueryStore
}

func (f *failingStore) Save(context.Context, *domain.QueryRecord) error {
	return errors.New("disk full")
}

func awaitResult(t *testing.T, ch <-chan driving.DispatchResult) driving.DispatchResult {
	t.Helper()
	select {
	case result := <-ch:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for dispatch result")
		return driving.DispatchResult{}
	}
}

func TestDispatch_PersistsRecord(t *testing.T) {
	store := memory.NewQueryStore()
	d := NewDispatcher(&fakeAnswerer{}, store, 2, 0)
	defer d.Stop()

	result := awaitResult(t, d.Dispatch("q_1700000001", "a long question"))
	require.NoError(t, result.Err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "q_1700000001", result.Record.DispatchID)
	assert.Equal(t, "a long question", result.Record.Question)
	assert.Equal(t, "background answer", result.Record.Answer)
	assert.NotEmpty(t, result.Record.ID)

	// The record is visible through the store afterwards.
	found, err := store.FindByDispatchID(context.Background(), "q_1700000001")
	require.NoError(t, err)
	assert.Equal(t, result.Record.ID, found.ID)
}

func TestDispatch_ManyTasksAllComplete(t *testing.T) {
	store := memory.NewQueryStore()
	answerer := &fakeAnswerer{}
	d := NewDispatcher(answerer, store, 3, 0)

	const n = 40 // more than the queue size, exercising overflow
	channels := make([]<-chan driving.DispatchResult, n)
	for i := 0; i < n; i++ {
		channels[i] = d.Dispatch("q_17", "question")
	}
	for _, ch := range channels {
		require.NoError(t, awaitResult(t, ch).Err)
	}
	d.Stop()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestDispatch_UsesConfiguredTimeout(t *testing.T) {
	answerer := &fakeAnswerer{}
	d := NewDispatcher(answerer, memory.NewQueryStore(), 1, 90*time.Second)
	defer d.Stop()

	require.NoError(t, awaitResult(t, d.Dispatch("q_1700000010", "question")).Err)
	answerer.mu.Lock()
	assert.Equal(t, 90*time.Second, answerer.lastTimeout)
	answerer.mu.Unlock()
}

func TestDispatch_DefaultTimeout(t *testing.T) {
	answerer := &fakeAnswerer{}
	d := NewDispatcher(answerer, memory.NewQueryStore(), 1, 0)
	defer d.Stop()

	require.NoError(t, awaitResult(t, d.Dispatch("q_1700000011", "question")).Err)
	answerer.mu.Lock()
	assert.Equal(t, defaultDispatchTimeout, answerer.lastTimeout)
	answerer.mu.Unlock()
}

func TestDispatch_PersistenceFailureIsReported(t *testing.T) {
	d := NewDispatcher(&fakeAnswerer{}, &failingStore{memory.NewQueryStore()}, 1, 0)
	defer d.Stop()

	result := awaitResult(t, d.Dispatch("q_1700000002", "question"))
	require.Error(t, result.Err)
	assert.Nil(t, result.Record)
}

func TestDispatch_AfterStop(t *testing.T) {
	d := NewDispatcher(&fakeAnswerer{}, memory.NewQueryStore(), 1, 0)
	d.Stop()

	result := awaitResult(t, d.Dispatch("q_1700000003", "question"))
	assert.Error(t, result.Err)
}

func TestStop_WaitsForInFlight(t *testing.T) {
	store := memory.NewQueryStore()
	d := NewDispatcher(&fakeAnswerer{}, store, 2, 0)

	ch := d.Dispatch("q_1700000004", "question")
	d.Stop()

	// After Stop returns the task has completed and persisted.
	result := awaitResult(t, ch)
	require.NoError(t, result.Err)
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
