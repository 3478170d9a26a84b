package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// TestValidateParams_Defaults tests that the production configuration is valid
func TestValidateParams_Defaults(t *testing.T) {
	params := models.DefaultEngineParams()

	assert.NoError(t, ValidateParams(params))
	assert.InDelta(t, 1.0, params.Weights.Sum(), 1e-9)
}

// TestValidateWeights_SumNotOne tests that weights off 1.0 are a configuration error
func TestValidateWeights_SumNotOne(t *testing.T) {
	weights := models.DefaultIndicatorWeights()
	weights.Poisson = 0.30

	err := ValidateWeights(weights)

	assert.ErrorIs(t, err, ErrInvalidWeights)
	assert.Contains(t, err.Error(), "1.05")
}

// TestValidateWeights_WithinTolerance tests that tiny rounding drift is accepted
func TestValidateWeights_WithinTolerance(t *testing.T) {
	weights := models.DefaultIndicatorWeights()
	weights.MatchImportance += 5e-7

	assert.NoError(t, ValidateWeights(weights))
}

// TestValidateWeights_Negative tests that a negative weight is rejected even if the sum is 1.0
func TestValidateWeights_Negative(t *testing.T) {
	weights := models.DefaultIndicatorWeights()
	weights.Motivation = -0.05
	weights.Poisson = 0.37

	err := ValidateWeights(weights)

	assert.ErrorIs(t, err, ErrInvalidWeights)
	assert.Contains(t, err.Error(), "motivation")
}

// TestValidateThresholds_Invalid tests malformed staking limits
func TestValidateThresholds_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Thresholds)
	}{
		{"odds range inverted", func(th *models.Thresholds) { th.MaxOdds = 1.05 }},
		{"min odds below one", func(th *models.Thresholds) { th.MinOdds = 0.9 }},
		{"probability above one", func(th *models.Thresholds) { th.MinProbOverLow = 70 }},
		{"zero kelly fraction", func(th *models.Thresholds) { th.KellyFraction = 0 }},
		{"stake cap above one", func(th *models.Thresholds) { th.MaxStakeFraction = 5 }},
		{"boost below one", func(th *models.Thresholds) { th.HTBoostHigh = 0.9 }},
		{"ceiling above one", func(th *models.Thresholds) { th.HTCeilingLow = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := models.DefaultThresholds()
			tt.mutate(&th)
			assert.ErrorIs(t, ValidateThresholds(th), ErrInvalidParams)
		})
	}
}

// TestValidateModel_Invalid tests malformed indicator bands
func TestValidateModel_Invalid(t *testing.T) {
	m := models.DefaultModelParams()
	m.HeadToHeadPrior.Low = 75
	assert.ErrorIs(t, ValidateModel(m), ErrInvalidParams)

	m = models.DefaultModelParams()
	m.EarlySeasonBefore = 30
	assert.ErrorIs(t, ValidateModel(m), ErrInvalidParams)

	m = models.DefaultModelParams()
	m.TopTableMax = 16
	assert.ErrorIs(t, ValidateModel(m), ErrInvalidParams)
}

// TestNew_InvalidParams tests that engine construction fails fast
func TestNew_InvalidParams(t *testing.T) {
	params := models.DefaultEngineParams()
	params.Weights.HeadToHead = 0

	eng, err := New(params)
	assert.Nil(t, eng)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	params = models.DefaultEngineParams()
	params.Bankroll = decimal.NewFromInt(-1)

	eng, err = New(params)
	assert.Nil(t, eng)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
