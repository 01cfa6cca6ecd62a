package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/core/ports/driving"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.Dispatcher = (*Dispatcher)(nil)

// Dispatcher defaults.
const (
	defaultWorkers         = 4
	defaultQueueSize       = 16
	defaultDispatchTimeout = 30 * time.Second
)

// dispatchTask is one enqueued background question.
type dispatchTask struct {
	id       string
	question string
	done     chan driving.DispatchResult
}

// Dispatcher answers long questions on a small worker pool and
// persists the results. The HTTP caller treats Dispatch as
// fire-and-forget; the per-task channel exists so completion and
// persistence failures are observable instead of silently lost.
type Dispatcher struct {
	answer     driving.AnswerService
	store      driven.QueryStore
	askTimeout time.Duration

	tasks chan dispatchTask
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewDispatcher creates a dispatcher and starts its workers. askTimeout
// bounds the model call per background question; zero or negative means
// the 30s default.
func NewDispatcher(answer driving.AnswerService, store driven.QueryStore, workers int, askTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if askTimeout <= 0 {
		askTimeout = defaultDispatchTimeout
	}

	d := &Dispatcher{
		answer:     answer,
		store:      store,
		askTimeout: askTimeout,
		tasks:      make(chan dispatchTask, defaultQueueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues a question under the given caller-visible id. The
// returned channel receives exactly one result and is then closed.
// When the queue is full the task runs on its own goroutine so the
// caller is never blocked and the question is never dropped.
func (d *Dispatcher) Dispatch(id, question string) <-chan driving.DispatchResult {
	task := dispatchTask{
		id:       id,
		question: question,
		done:     make(chan driving.DispatchResult, 1),
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		task.done <- driving.DispatchResult{Err: errors.New("dispatcher stopped")}
		close(task.done)
		return task.done
	}

	select {
	case d.tasks <- task:
		d.mu.Unlock()
	default:
		// Queue full: overflow onto a dedicated goroutine rather than
		// rejecting or blocking the request handler.
		d.wg.Add(1)
		d.mu.Unlock()
		logger.Warn("dispatch: queue full, running %s on overflow goroutine", id)
		go func() {
			defer d.wg.Done()
			d.process(task)
		}()
	}

	return task.done
}

// Stop waits for in-flight questions to finish. Dispatch calls after
// Stop are rejected with an immediate error result.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.tasks)
	d.mu.Unlock()

	d.wg.Wait()
}

// worker drains the task queue until Stop closes it.
func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		d.process(task)
	}
}

// process answers one background question and persists the record.
func (d *Dispatcher) process(task dispatchTask) {
	logger.Info("dispatch: starting background processing for %s", task.id)
	start := time.Now()

	ctx := context.Background()
	answer := d.answer.AskWithModel(ctx, task.question, "", d.askTimeout)

	record := &domain.QueryRecord{
		ID:             uuid.NewString(),
		DispatchID:     task.id,
		Question:       task.question,
		Answer:         answer.Text,
		ModelRequested: answer.ModelRequested,
		ModelUsed:      answer.ModelUsed,
		FallbackUsed:   answer.FallbackUsed,
		CreatedAt:      time.Now().UTC(),
	}

	result := driving.DispatchResult{Record: record}
	if err := d.store.Save(ctx, record); err != nil {
		// The answer is lost to history but the failure is loud.
		logger.Error("dispatch: error persisting result for %s: %v", task.id, err)
		result = driving.DispatchResult{Err: fmt.Errorf("persisting result: %w", err)}
	} else {
		logger.Info("dispatch: background processing completed in %s for %s",
			time.Since(start).Truncate(time.Millisecond), task.id)
	}

	task.done <- result
	close(task.done)
}
