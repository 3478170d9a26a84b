package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/goals-ev-service/internal/cache"
	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/service"
)

const maxBodyBytes = 1 << 20

// Analyzer is the service surface exposed over HTTP
type Analyzer interface {
	EvaluateFixture(ctx context.Context, snap *models.FixtureSnapshot) (*models.Evaluation, error)
	GetEvaluation(ctx context.Context, fixtureID string) (*models.Evaluation, error)
	GetLeagueEvaluations(ctx context.Context, league string) ([]*models.Evaluation, error)
	StartCycle(ctx context.Context) (bool, error)
	Status() service.CycleStatus
}

// AnalysisHandler handles HTTP requests for evaluations and analysis cycles
type AnalysisHandler struct {
	analyzer Analyzer
	cycleCtx context.Context // triggered cycles outlive the request and stop with this context
	logger   zerolog.Logger
}

// NewAnalysisHandler creates a new analysis HTTP handler
func NewAnalysisHandler(ctx context.Context, analyzer Analyzer, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		cycleCtx: ctx,
		logger:   logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided router
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/webhook/daily-trigger", h.handleTrigger).Methods(http.MethodPost)
	router.HandleFunc("/status", h.handleStatus).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/evaluate", h.handleEvaluate).Methods(http.MethodPost)
	api.HandleFunc("/fixtures/{fixture_id}/evaluation", h.handleGetEvaluation).Methods(http.MethodGet)
	api.HandleFunc("/leagues/{code}/evaluations", h.handleGetLeagueEvaluations).Methods(http.MethodGet)
}

// handleTrigger handles POST /webhook/daily-trigger
func (h *AnalysisHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	started, err := h.analyzer.StartCycle(h.cycleCtx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to start analysis cycle")
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	if !started {
		h.jsonResponse(w, http.StatusAccepted, map[string]string{
			"status":  "already_running",
			"message": "analysis already in progress",
		})
		return
	}

	h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("analysis cycle triggered")
	h.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "started",
		"message": "analysis started",
	})
}

// handleStatus handles GET /status
func (h *AnalysisHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.analyzer.Status())
}

// handleEvaluate handles POST /api/v1/evaluate
func (h *AnalysisHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var snap models.FixtureSnapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&snap); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, err := h.analyzer.EvaluateFixture(r.Context(), &snap)
	if errors.Is(err, models.ErrMissingField) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("fixture_id", snap.FixtureID).Msg("evaluation failed")
		h.errorResponse(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, eval)
}

// handleGetEvaluation handles GET /api/v1/fixtures/{fixture_id}/evaluation
func (h *AnalysisHandler) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	fixtureID := mux.Vars(r)["fixture_id"]

	eval, err := h.analyzer.GetEvaluation(r.Context(), fixtureID)
	if errors.Is(err, cache.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "evaluation not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("fixture_id", fixtureID).Msg("failed to retrieve evaluation")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve evaluation")
		return
	}

	h.jsonResponse(w, http.StatusOK, eval)
}

// handleGetLeagueEvaluations handles GET /api/v1/leagues/{code}/evaluations
func (h *AnalysisHandler) handleGetLeagueEvaluations(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	evals, err := h.analyzer.GetLeagueEvaluations(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Str("league", code).Msg("failed to retrieve league evaluations")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve evaluations")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"league":      code,
		"count":       len(evals),
		"evaluations": evals,
	})
}

// jsonResponse writes a JSON response
func (h *AnalysisHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *AnalysisHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
