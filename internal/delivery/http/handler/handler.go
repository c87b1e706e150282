package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/delivery/http/request"
	"github.com/user/philosophy-walker/internal/delivery/http/response"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/internal/usecase"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	game   usecase.Game
	checks map[string]HealthCheck
	logger *zap.Logger
}

// NewHandler creates the API handler. checks may be empty when the service
// runs without external stores.
func NewHandler(game usecase.Game, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		game:   game,
		checks: checks,
		logger: logger,
	}
}

// HandleTraverse runs a traversal synchronously and returns its result.
func (h *Handler) HandleTraverse(w http.ResponseWriter, r *http.Request) {
	var req request.TraverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.game.Play(r.Context(), req.URL)
	if err != nil {
		h.writeUseCaseError(w, req.URL, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewTraversalResponse(result, usecase.Summary(result, h.game.TargetName())))
}

func (h *Handler) HandleSubmitTraversal(w http.ResponseWriter, r *http.Request) {
	var req request.TraverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.game.Submit(r.Context(), req.URL)
	if err != nil {
		h.writeUseCaseError(w, req.URL, err)
		return
	}

	resp := response.SubmitTraversalResponse{
		Status:  "success",
		Message: "Traversal queued",
		JobID:   jobID,
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

// HandleGetTraversal returns the stored result for the url query parameter,
// or the most recent results when url is absent.
func (h *Handler) HandleGetTraversal(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.handleListTraversals(w, r)
		return
	}

	result, err := h.game.Result(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "No traversal found for the given URL", http.StatusNotFound)
			return
		}
		h.writeUseCaseError(w, rawURL, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewTraversalResponse(result, usecase.Summary(result, h.game.TargetName())))
}

func (h *Handler) handleListTraversals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := h.game.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list traversal results", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.TraversalListResponse{Traversals: make([]response.TraversalResponse, 0, len(results))}
	for _, result := range results {
		resp.Traversals = append(resp.Traversals, response.NewTraversalResponse(result, usecase.Summary(result, h.game.TargetName())))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := h.game.Graph(r.Context())
	if err != nil {
		h.logger.Error("failed to load path graph", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.GraphResponse{
		Target: h.game.TargetName(),
		Nodes:  g.Nodes(),
		Edges:  g.Edges(),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetGraphDOT(w http.ResponseWriter, r *http.Request) {
	g, err := h.game.Graph(r.Context())
	if err != nil {
		h.logger.Error("failed to load path graph", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := g.WriteDOT(w, h.game.TargetName()); err != nil {
		h.logger.Error("failed to write DOT response", zap.Error(err))
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("service", name), zap.Error(err))
			status[name] = "unhealthy"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "healthy"
	}
	h.writeJSON(w, code, status)
}

// writeUseCaseError maps use case errors to status codes.
func (h *Handler) writeUseCaseError(w http.ResponseWriter, rawURL string, err error) {
	var invalid *usecase.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		h.writeJSONError(w, "Invalid URL: "+invalid.Reason, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrQueueDisabled):
		h.writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request aborted", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Request aborted", http.StatusServiceUnavailable)
	default:
		h.logger.Error("traversal request failed", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
