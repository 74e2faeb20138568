// Package server exposes the pipeline over HTTP. It is a thin adapter: all
// routing, budgets, and error semantics live in the pipeline controller.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/docpilot/pkg/pipeline"
)

// Runner is the subset of the controller used by the server.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Server handles pipeline run requests.
type Server struct {
	runner Runner
	logger *slog.Logger
}

// New creates a Server around a pipeline runner.
func New(runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/runs", s.handleRun)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// runRequest is the wire form of a pipeline invocation. Field names follow
// the original document-processing contract.
type runRequest struct {
	PDFText           string            `json:"pdf_text"`
	UserPrompt        string            `json:"user_prompt"`
	AdditionalContext map[string]string `json:"additional_context,omitempty"`
}

type runResponse struct {
	FinalAnswer string            `json:"final_answer"`
	History     []pipeline.Stage  `json:"history"`
	Score       int               `json:"score"`
	Metadata    pipeline.Metadata `json:"metadata"`
	RequestID   string            `json:"request_id"`
}

type errorResponse struct {
	Error     string           `json:"error"`
	Stage     string           `json:"stage,omitempty"`
	History   []pipeline.Stage `json:"history,omitempty"`
	RequestID string           `json:"request_id"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	start := time.Now()

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("bad request body", "request", requestID, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     "invalid JSON body: " + err.Error(),
			RequestID: requestID,
		})
		return
	}

	resp, err := s.runner.Run(r.Context(), pipeline.Request{
		SourceText:        req.PDFText,
		Prompt:            req.UserPrompt,
		AdditionalContext: req.AdditionalContext,
	})
	if err != nil {
		status, body := errorBody(err)
		body.RequestID = requestID
		s.logger.Error("run failed",
			"request", requestID, "stage", body.Stage, "status", status, "error", err)
		writeJSON(w, status, body)
		return
	}

	s.logger.Info("run complete",
		"request", requestID,
		"run", resp.Metadata.RunID,
		"score", resp.Score,
		"review_cycles", resp.Metadata.ReviewCycles,
		"duration", time.Since(start))

	writeJSON(w, http.StatusOK, runResponse{
		FinalAnswer: resp.FinalAnswer,
		History:     resp.History,
		Score:       resp.Score,
		Metadata:    resp.Metadata,
		RequestID:   requestID,
	})
}

// errorBody maps pipeline failures to HTTP status codes: bad input 400,
// exhausted review budget 422, upstream generation failure 502, anything
// else 500.
func errorBody(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		body.Stage = string(runErr.Stage)
		body.History = runErr.History
	}

	var inputErr *pipeline.InputError
	var genErr *pipeline.GenerationError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, body
	case errors.Is(err, pipeline.ErrReviewBudget):
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &genErr):
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
