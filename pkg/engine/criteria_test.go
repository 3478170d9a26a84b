package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// premierLeagueCriteria mirrors the ENG1 league entry
func premierLeagueCriteria() models.LeagueCriteria {
	return models.LeagueCriteria{
		MinTeamAvgGoals:   2.30,
		MinTeamAvgGoalsHT: 1.20,
		MinSampleGames:    4,
		MinHTSampleGames:  3,
	}
}

func setupTestCriteria(t *testing.T) *CriteriaEvaluator {
	evaluator, err := NewCriteriaEvaluator(premierLeagueCriteria())
	require.NoError(t, err)
	return evaluator
}

func avg(goals float64, sample int) models.TeamAverage {
	return models.TeamAverage{AvgGoals: goals, SampleSize: sample}
}

func avgPtr(goals float64, sample int) *models.TeamAverage {
	a := avg(goals, sample)
	return &a
}

// TestNewCriteriaEvaluator_InvalidCriteria tests that malformed thresholds are rejected
func TestNewCriteriaEvaluator_InvalidCriteria(t *testing.T) {
	criteria := premierLeagueCriteria()
	criteria.MinSampleGames = 0

	evaluator, err := NewCriteriaEvaluator(criteria)

	assert.Nil(t, evaluator)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

// TestEvaluate_InsufficientSampleDominates tests that a small sample wins over high averages
func TestEvaluate_InsufficientSampleDominates(t *testing.T) {
	evaluator := setupTestCriteria(t)

	result := evaluator.Evaluate(avg(5.0, 2), avg(5.0, 2), avgPtr(3.0, 10), avgPtr(3.0, 10))

	assert.False(t, result.Meets)
	assert.Equal(t, models.ReasonInsufficientSample, result.Reason)
}

// TestEvaluate_OneSideShortSample tests that either side below the minimum rejects
func TestEvaluate_OneSideShortSample(t *testing.T) {
	evaluator := setupTestCriteria(t)

	result := evaluator.Evaluate(avg(4.0, 10), avg(4.0, 3), nil, nil)

	assert.False(t, result.Meets)
	assert.Equal(t, models.ReasonInsufficientSample, result.Reason)
}

// TestEvaluate_Reasons tests the priority between full-time and half-time criteria
func TestEvaluate_Reasons(t *testing.T) {
	evaluator := setupTestCriteria(t)

	tests := []struct {
		name   string
		home   models.TeamAverage
		away   models.TeamAverage
		homeHT *models.TeamAverage
		awayHT *models.TeamAverage
		meets  bool
		reason models.CriteriaReason
	}{
		{
			name:   "both criteria",
			home:   avg(2.5, 4),
			away:   avg(1.0, 4),
			homeHT: avgPtr(1.3, 4),
			awayHT: avgPtr(0.5, 4),
			meets:  true,
			reason: models.ReasonBothCriteria,
		},
		{
			name:   "full-time only without half-time data",
			home:   avg(1.0, 4),
			away:   avg(2.3, 4),
			meets:  true,
			reason: models.ReasonFulltimeCriteria,
		},
		{
			name:   "full-time only with weak half-time",
			home:   avg(2.4, 6),
			away:   avg(2.4, 6),
			homeHT: avgPtr(0.8, 6),
			awayHT: avgPtr(1.1, 6),
			meets:  true,
			reason: models.ReasonFulltimeCriteria,
		},
		{
			name:   "half-time only",
			home:   avg(1.5, 5),
			away:   avg(1.8, 5),
			homeHT: avgPtr(1.2, 5),
			awayHT: avgPtr(0.2, 5),
			meets:  true,
			reason: models.ReasonHalftimeCriteria,
		},
		{
			name:   "half-time sample too small is ignored",
			home:   avg(1.5, 5),
			away:   avg(1.8, 5),
			homeHT: avgPtr(2.0, 2),
			awayHT: avgPtr(2.0, 5),
			meets:  false,
			reason: models.ReasonNoCriteriaMet,
		},
		{
			name:   "half-time needs both sides present",
			home:   avg(1.5, 5),
			away:   avg(1.8, 5),
			homeHT: avgPtr(2.0, 5),
			meets:  false,
			reason: models.ReasonNoCriteriaMet,
		},
		{
			name:   "nothing met",
			home:   avg(1.0, 8),
			away:   avg(1.1, 8),
			homeHT: avgPtr(0.4, 8),
			awayHT: avgPtr(0.6, 8),
			meets:  false,
			reason: models.ReasonNoCriteriaMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluator.Evaluate(tt.home, tt.away, tt.homeHT, tt.awayHT)
			assert.Equal(t, tt.meets, result.Meets)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

// TestEvaluate_BoundaryValuesPass tests that thresholds are inclusive
func TestEvaluate_BoundaryValuesPass(t *testing.T) {
	evaluator := setupTestCriteria(t)

	result := evaluator.Evaluate(avg(2.30, 4), avg(0, 4), avgPtr(1.20, 3), avgPtr(0, 3))

	assert.True(t, result.Meets)
	assert.Equal(t, models.ReasonBothCriteria, result.Reason)
}
