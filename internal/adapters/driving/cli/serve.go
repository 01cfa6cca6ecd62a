package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/queryd/internal/adapters/driven/config/file"
	"github.com/custodia-labs/queryd/internal/adapters/driven/corpus/filesystem"
	"github.com/custodia-labs/queryd/internal/adapters/driven/index/tfidf"
	"github.com/custodia-labs/queryd/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/queryd/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/queryd/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/queryd/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/queryd/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/core/services"
	"github.com/custodia-labs/queryd/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question-answering HTTP server",
	Long: `Starts the HTTP API.

The document index is built lazily on the first question, so startup is
immediate even for large corpora. The server runs until interrupted and
drains in-flight requests and background questions before exiting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(configPath)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("serve: error closing store: %v", err)
		}
	}()

	llm, err := newLLM(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := llm.Close(); err != nil {
			logger.Error("serve: error closing model provider: %v", err)
		}
	}()

	loader := filesystem.NewLoader(cfg.Corpus.Dir)
	index := tfidf.NewIndex()
	answer := services.NewAnswerService(loader, index, llm)
	history := services.NewHistoryService(store)
	dispatcher := services.NewDispatcher(answer, store, 0, cfg.AsyncTimeout())
	server := httpapi.NewServer(cfg.Server.Addr, answer, history, dispatcher, store, cfg.SyncTimeout())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reachability check only; the server starts either way.
	if err := llm.Ping(ctx); err != nil {
		logger.Warn("serve: model provider %s not reachable: %v", llm.ModelName(), err)
	}

	// Warm the index in the background so the first question does not
	// pay the full load cost.
	go func() {
		if err := answer.Ready(context.Background()); err != nil {
			logger.Warn("serve: index warm-up: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		dispatcher.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("serve: error shutting down server: %v", err)
	}
	dispatcher.Stop()
	return <-errCh
}

// newStore builds the configured query store backend.
func newStore(cfg *file.Config) (driven.QueryStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlite.NewStore(cfg.Storage.Dir)
	case "memory":
		return memory.NewQueryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newLLM builds the configured model provider.
func newLLM(cfg *file.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return gemini.NewLLMService(gemini.LLMConfig{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
			BurstSize:         cfg.LLM.Burst,
		})
	case "ollama":
		return ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
