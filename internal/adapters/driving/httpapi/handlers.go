package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/queryd/internal/core/domain"
	"github.com/custodia-labs/queryd/internal/logger"
)

// Questions with more characters than this are answered in the
// background. The threshold counts characters, not bytes.
const asyncThreshold = 100

const (
	initializingMessage = "The service is currently initializing. Please try again in a moment."
	processingMessage   = "Your question is being processed. Poll the status endpoint with the question id."
)

type queryRequest struct {
	Question string `json:"question"`
	Model    string `json:"model,omitempty"`
}

type recordResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	ModelUsed string `json:"model_used"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Results []recordResponse `json:"results"`
	Count   int              `json:"count"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"has_more"`
}

type statusResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message,omitempty"`
	QuestionID string          `json:"question_id,omitempty"`
	Query      *recordResponse `json:"query,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toRecordResponse(r *domain.QueryRecord) recordResponse {
	return recordResponse{
		ID:        r.ID,
		Question:  r.Question,
		Answer:    r.Answer,
		ModelUsed: r.ModelUsed,
		Timestamp: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleQuery answers a question. Short questions are answered in the
// request, long ones are handed to the dispatcher and acknowledged with
// a pollable question id.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	if err := s.answer.Ready(r.Context()); err != nil {
		logger.Warn("http: service not ready: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:  "initializing",
			Message: initializingMessage,
		})
		return
	}

	if utf8.RuneCountInString(req.Question) > asyncThreshold {
		id := fmt.Sprintf("q_%d", time.Now().Unix())
		s.dispatcher.Dispatch(id, req.Question)
		logger.Info("http: dispatched %s for background processing", id)
		writeJSON(w, http.StatusAccepted, statusResponse{
			Status:     "processing",
			Message:    processingMessage,
			QuestionID: id,
		})
		return
	}

	answer := s.answer.AskWithModel(r.Context(), req.Question, req.Model, s.syncTimeout)
	if answer.Status == domain.AnswerInitializing {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:  "initializing",
			Message: answer.Text,
		})
		return
	}

	record := &domain.QueryRecord{
		ID:             uuid.NewString(),
		Question:       req.Question,
		Answer:         answer.Text,
		ModelRequested: answer.ModelRequested,
		ModelUsed:      answer.ModelUsed,
		FallbackUsed:   answer.FallbackUsed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Save(r.Context(), record); err != nil {
		logger.Error("http: error persisting query record: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "storage failure",
			Message: "the answer could not be saved",
		})
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(record))
}

// handleHistory lists past queries newest-first. Malformed limit and
// offset values fall back to their defaults.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := s.history.History(r.Context(), limit, offset)
	if err != nil {
		logger.Error("http: error listing history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
		return
	}

	resp := historyResponse{
		Results: make([]recordResponse, 0, len(page.Results)),
		Count:   page.Count,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}
	for i := range page.Results {
		resp.Results = append(resp.Results, toRecordResponse(&page.Results[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus reports on a background question. An id with no matching
// record is still being processed.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.history.Status(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question id is required"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusAccepted, statusResponse{
			Status:  "processing",
			Message: "Your question is still being processed. Please check back shortly.",
		})
	case err != nil:
		logger.Error("http: error looking up %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		query := toRecordResponse(record)
		writeJSON(w, http.StatusOK, statusResponse{Status: "completed", Query: &query})
	}
}
