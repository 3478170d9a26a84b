package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/goals-ev-service/internal/cache"
	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/service"
)

// fakeAnalyzer is an in-memory Analyzer
type fakeAnalyzer struct {
	evals      map[string]*models.Evaluation
	evalErr    error
	getErr     error
	started    bool
	startErr   error
	startCalls int
	status     service.CycleStatus
	lastSnap   *models.FixtureSnapshot
}

func (f *fakeAnalyzer) EvaluateFixture(_ context.Context, snap *models.FixtureSnapshot) (*models.Evaluation, error) {
	f.lastSnap = snap
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &models.Evaluation{ID: uuid.New(), FixtureID: snap.FixtureID, LeagueCode: snap.LeagueCode}, nil
}

func (f *fakeAnalyzer) GetEvaluation(_ context.Context, fixtureID string) (*models.Evaluation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	eval, ok := f.evals[fixtureID]
	if !ok {
		return nil, fmt.Errorf("failed to retrieve evaluation: %w", cache.ErrNotFound)
	}
	return eval, nil
}

func (f *fakeAnalyzer) GetLeagueEvaluations(_ context.Context, league string) ([]*models.Evaluation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*models.Evaluation
	for _, e := range f.evals {
		if strings.EqualFold(e.LeagueCode, league) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAnalyzer) StartCycle(context.Context) (bool, error) {
	f.startCalls++
	return f.started, f.startErr
}

func (f *fakeAnalyzer) Status() service.CycleStatus {
	return f.status
}

func setupTestRouter(analyzer *fakeAnalyzer) *mux.Router {
	router := mux.NewRouter()
	NewAnalysisHandler(context.Background(), analyzer, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func serve(router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// TestHandleTrigger tests the daily trigger responses
func TestHandleTrigger(t *testing.T) {
	tests := []struct {
		name       string
		analyzer   *fakeAnalyzer
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"started", &fakeAnalyzer{started: true}, http.StatusOK, "status", "started"},
		{"already running", &fakeAnalyzer{started: false}, http.StatusAccepted, "status", "already_running"},
		{"no provider", &fakeAnalyzer{startErr: service.ErrNoProvider}, http.StatusServiceUnavailable, "error", service.ErrNoProvider.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(setupTestRouter(tt.analyzer), http.MethodPost, "/webhook/daily-trigger", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantValue, decodeBody(t, rec)[tt.wantField])
			assert.Equal(t, 1, tt.analyzer.startCalls)
		})
	}
}

// TestHandleTrigger_MethodNotAllowed tests that the trigger only accepts POST
func TestHandleTrigger_MethodNotAllowed(t *testing.T) {
	analyzer := &fakeAnalyzer{started: true}

	rec := serve(setupTestRouter(analyzer), http.MethodGet, "/webhook/daily-trigger", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 0, analyzer.startCalls)
}

// TestHandleStatus tests the status report
func TestHandleStatus(t *testing.T) {
	last := models.CycleSummary{
		StartedAt:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		LeaguesProcessed: 10,
		FixturesAnalyzed: 34,
		Opportunities:    3,
		APIRequests:      120,
	}
	analyzer := &fakeAnalyzer{status: service.CycleStatus{
		Running: true,
		Leagues: []string{"ENG1", "GER1"},
		LastRun: &last,
		History: []models.CycleSummary{last},
	}}

	rec := serve(setupTestRouter(analyzer), http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var status service.CycleStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, []string{"ENG1", "GER1"}, status.Leagues)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, 34, status.LastRun.FixturesAnalyzed)
	assert.Len(t, status.History, 1)
}

// TestHandleEvaluate tests on-demand evaluation of a snapshot
func TestHandleEvaluate(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	body := `{
		"fixture_id": "1035045",
		"league_code": "ENG1",
		"home_team": "Arsenal",
		"away_team": "Brighton",
		"home": {"goals_per_game": 2.6, "sample_size": 10},
		"away": {"goals_per_game": 2.1, "sample_size": 10, "over_low_rate": 0.9},
		"odds": {"over_low": 1.08, "over_high": 1.33}
	}`

	rec := serve(setupTestRouter(analyzer), http.MethodPost, "/api/v1/evaluate", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1035045", decodeBody(t, rec)["fixture_id"])
	require.NotNil(t, analyzer.lastSnap)
	assert.Equal(t, 2.6, *analyzer.lastSnap.Home.GoalsPerGame)
	assert.Equal(t, 0.9, *analyzer.lastSnap.Away.OverLowRate)
	assert.Nil(t, analyzer.lastSnap.Home.OverLowRate)
	assert.Equal(t, 1.33, analyzer.lastSnap.Odds.OverHigh)
}

// TestHandleEvaluate_Errors tests the error mapping of the evaluate endpoint
func TestHandleEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		analyzer   *fakeAnalyzer
		body       string
		wantStatus int
	}{
		{"malformed body", &fakeAnalyzer{}, `{"fixture_id": `, http.StatusBadRequest},
		{"missing identity", &fakeAnalyzer{}, `{"home_team": "Arsenal"}`, http.StatusBadRequest},
		{"missing team stats", &fakeAnalyzer{evalErr: fmt.Errorf("home: goals_per_game: %w", models.ErrMissingField)}, `{"fixture_id": "1"}`, http.StatusBadRequest},
		{"internal failure", &fakeAnalyzer{evalErr: errors.New("boom")}, `{"fixture_id": "1"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(setupTestRouter(tt.analyzer), http.MethodPost, "/api/v1/evaluate", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

// TestHandleGetEvaluation tests retrieval of a cached evaluation
func TestHandleGetEvaluation(t *testing.T) {
	id := uuid.New()
	analyzer := &fakeAnalyzer{evals: map[string]*models.Evaluation{
		"1035045": {ID: id, FixtureID: "1035045", LeagueCode: "ENG1"},
	}}
	router := setupTestRouter(analyzer)

	rec := serve(router, http.MethodGet, "/api/v1/fixtures/1035045/evaluation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), decodeBody(t, rec)["id"])

	rec = serve(router, http.MethodGet, "/api/v1/fixtures/999/evaluation", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	analyzer.getErr = errors.New("redis down")
	rec = serve(router, http.MethodGet, "/api/v1/fixtures/1035045/evaluation", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestHandleGetLeagueEvaluations tests the league listing
func TestHandleGetLeagueEvaluations(t *testing.T) {
	analyzer := &fakeAnalyzer{evals: map[string]*models.Evaluation{
		"1": {FixtureID: "1", LeagueCode: "ENG1"},
		"2": {FixtureID: "2", LeagueCode: "ENG1"},
		"3": {FixtureID: "3", LeagueCode: "GER1"},
	}}
	router := setupTestRouter(analyzer)

	rec := serve(router, http.MethodGet, "/api/v1/leagues/eng1/evaluations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "eng1", body["league"])
	assert.Equal(t, float64(2), body["count"])

	analyzer.getErr = errors.New("redis down")
	rec = serve(router, http.MethodGet, "/api/v1/leagues/eng1/evaluations", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
