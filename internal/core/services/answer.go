package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/core/ports/driving"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Fixed user-facing messages. The HTTP adapter returns these verbatim;
// internal callers branch on the Answer status instead.
const (
	initializingMessage = "The service is currently initializing. Please try again in a moment."
	failureMessage      = "Sorry, an error occurred while processing your question. Please try a simpler question or try again later."
)

// Generation parameters and limits.
const (
	maxQuestionLen  = 500
	contextTopK     = 3
	generationTemp  = 0.1
	generationTopP  = 1.0
	maxOutputTokens = 256

	defaultAskTimeout = 10 * time.Second
)

const promptTemplate = "Answer based on this context:\n%s\n\nQuestion: %s\nAnswer:"

// initState is the initialization state of the answer service.
type initState int

const (
	stateUninitialized initState = iota
	stateInitializing
	stateInitialized
)

// AnswerService answers questions by retrieving document context and
// delegating to a model provider.
//
// Initialization is lazy and non-blocking: the first caller loads the
// corpus and builds the index inline; concurrent callers observe the
// initializing state and get an immediate "not ready" result rather
// than waiting. A failed attempt resets the state so the next call
// retries from scratch. The mutex guards only the state transitions,
// never the loading work itself; after a successful load the corpus
// and index are read-only and shared without further locking.
type AnswerService struct {
	loader driven.CorpusLoader
	index  driven.DocumentIndex
	llm    driven.LLMService

	mu    sync.Mutex
	state initState
}

// NewAnswerService creates an uninitialized answer service.
func NewAnswerService(loader driven.CorpusLoader, index driven.DocumentIndex, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		loader: loader,
		index:  index,
		llm:    llm,
	}
}

// Ready attempts lazy initialization if needed. It returns nil once
// initialized, domain.ErrInitializing when another caller holds the
// initializing state, and the load error when this caller's own
// attempt fails.
func (s *AnswerService) Ready(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case stateInitialized:
		s.mu.Unlock()
		return nil
	case stateInitializing:
		s.mu.Unlock()
		return domain.ErrInitializing
	}
	s.state = stateInitializing
	s.mu.Unlock()

	if err := s.initialize(ctx); err != nil {
		s.mu.Lock()
		s.state = stateUninitialized
		s.mu.Unlock()
		logger.Error("answer: error initializing service: %v", err)
		return err
	}

	s.mu.Lock()
	s.state = stateInitialized
	s.mu.Unlock()
	return nil
}

// initialize loads the corpus and builds the index. The two are always
// rebuilt together so the index can never go stale against the corpus.
func (s *AnswerService) initialize(ctx context.Context) error {
	start := time.Now()
	logger.Info("answer: starting service initialization")

	docs, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	// An empty corpus is not an error: the index stays unfitted and
	// answers are generated without document context.
	if err := s.index.Fit(docs); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	logger.Info("answer: service initialized with %d documents in %s",
		len(docs), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// Ask answers a question with the default requested model.
func (s *AnswerService) Ask(ctx context.Context, question string, timeout time.Duration) domain.Answer {
	return s.AskWithModel(ctx, question, "", timeout)
}

// AskWithModel answers a question. The model parameter is accepted for
// compatibility and recorded in the result, but every question goes to
// the one configured provider. The timeout bounds the model call.
func (s *AnswerService) AskWithModel(ctx context.Context, question, model string, timeout time.Duration) domain.Answer {
	requested := model
	if requested == "" {
		requested = s.llm.ModelName()
	}

	if err := s.Ready(ctx); err != nil {
		return domain.Answer{
			Status:         domain.AnswerInitializing,
			Text:           initializingMessage,
			ModelRequested: requested,
			ModelUsed:      "initializing",
		}
	}

	start := time.Now()

	// Only the copy sent to the model is truncated; callers persist
	// the original question. The limit counts characters, not bytes,
	// so multibyte questions are never cut mid-rune.
	truncated := question
	if utf8.RuneCountInString(truncated) > maxQuestionLen {
		truncated = string([]rune(truncated)[:maxQuestionLen]) + "..."
		logger.Debug("answer: question truncated to %d characters", maxQuestionLen)
	}

	contextBlock := s.retrieveContext(truncated)
	prompt := fmt.Sprintf(promptTemplate, contextBlock, truncated)

	if timeout <= 0 {
		timeout = defaultAskTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := s.llm.Generate(callCtx, prompt, driven.GenerateOptions{
		MaxTokens:   maxOutputTokens,
		Temperature: generationTemp,
		TopP:        generationTopP,
	})
	if err != nil {
		logger.Error("answer: error processing question: %v", err)
		return domain.Answer{
			Status:         domain.AnswerFailed,
			Text:           failureMessage,
			ModelRequested: requested,
			ModelUsed:      s.llm.ModelName(),
		}
	}

	logger.Info("answer: question processed in %s", time.Since(start).Truncate(time.Millisecond))
	return domain.Answer{
		Status:         domain.AnswerReady,
		Text:           text,
		ModelRequested: requested,
		ModelUsed:      s.llm.ModelName(),
	}
}

// retrieveContext joins the top-k most similar documents into a single
// context block. With no index (empty corpus) the block is empty.
func (s *AnswerService) retrieveContext(question string) string {
	results := s.index.TopK(question, contextTopK)
	if len(results) == 0 {
		return ""
	}
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Document.Content
	}
	return strings.Join(contents, "\n\n")
}
