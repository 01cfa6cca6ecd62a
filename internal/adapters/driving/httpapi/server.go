// Package httpapi exposes the question-answering core over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/queryd/internal/core/ports/driven"
	"github.com/custodia-labs/queryd/internal/core/ports/driving"
	"github.com/custodia-labs/queryd/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 60 * time.Second
	maxRequestBody    = 1 << 20 // 1 MiB
)

// Server is the HTTP driving adapter. It owns an http.Server and routes
// requests into the answer, history and dispatch services.
type Server struct {
	answer     driving.AnswerService
	history    driving.HistoryService
	dispatcher driving.Dispatcher
	store      driven.QueryStore

	syncTimeout time.Duration
	srv         *http.Server
}

// NewServer wires the services into an HTTP server listening on addr.
// syncTimeout bounds the model call for synchronously answered
// questions.
func NewServer(addr string, answer driving.AnswerService, history driving.HistoryService, dispatcher driving.Dispatcher, store driven.QueryStore, syncTimeout time.Duration) *Server {
	s := &Server{
		answer:      answer,
		history:     history,
		dispatcher:  dispatcher,
		store:       store,
		syncTimeout: syncTimeout,
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return s
}

// routes builds the request mux. Exposed separately so tests can drive
// the handler without a listener.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/status/{id}", s.handleStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	logger.Info("http: listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("http: shutting down")
	return s.srv.Shutdown(ctx)
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("http: error encoding response: %v", err)
	}
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Trailing content after the object is malformed input.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
