package engine

import (
	"math"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// ProbabilityEngine combines the weighted indicators into Over 0.5 / Over 1.5 probabilities
type ProbabilityEngine struct {
	weights    models.IndicatorWeights
	thresholds models.Thresholds
	model      models.ModelParams
}

// NewProbabilityEngine creates a probability engine; invalid weights are a configuration error
func NewProbabilityEngine(weights models.IndicatorWeights, thresholds models.Thresholds, model models.ModelParams) (*ProbabilityEngine, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if err := ValidateThresholds(thresholds); err != nil {
		return nil, err
	}
	if err := ValidateModel(model); err != nil {
		return nil, err
	}
	return &ProbabilityEngine{
		weights:    weights,
		thresholds: thresholds,
		model:      model,
	}, nil
}

// Indicators computes every indicator pair, each clamped to [0, 1]
func (e *ProbabilityEngine) Indicators(home, away models.TeamStatSnapshot, h2h models.HeadToHeadRecord, ctx models.MatchContext) map[models.Indicator]models.ProbabilityPair {
	raw := map[models.Indicator]models.ProbabilityPair{
		models.IndicatorPoisson:           poissonIndicator(home, away),
		models.IndicatorHistoricalRate:    historicalRateIndicator(home, away),
		models.IndicatorRecentTrend:       recentTrendIndicator(home, away),
		models.IndicatorHeadToHead:        headToHeadIndicator(h2h, e.model),
		models.IndicatorOffensiveStrength: offensiveStrengthIndicator(home, away, e.model),
		models.IndicatorOffensiveTrend:    offensiveTrendIndicator(home, away, e.model),
		models.IndicatorSeasonPhase:       seasonPhaseIndicator(ctx, e.model),
		models.IndicatorMotivation:        motivationIndicator(ctx, e.model),
		models.IndicatorMatchImportance:   matchImportanceIndicator(ctx, e.model),
	}
	for ind, p := range raw {
		raw[ind] = clampPair(p)
	}
	return raw
}

// Estimate returns the weighted probabilities for both thresholds.
// When htScoreless is set the match is 0-0 at half-time and the boosts apply,
// capped by the half-time ceilings. PHigh never exceeds PLow.
func (e *ProbabilityEngine) Estimate(home, away models.TeamStatSnapshot, h2h models.HeadToHeadRecord, ctx models.MatchContext, htScoreless bool) models.ProbabilityResult {
	indicators := e.Indicators(home, away, h2h, ctx)

	var low, high float64
	for _, ind := range models.AllIndicators {
		w := e.weights.For(ind)
		low += w * indicators[ind].Low
		high += w * indicators[ind].High
	}

	if htScoreless {
		low = clamp(low*e.thresholds.HTBoostLow, 0, e.thresholds.HTCeilingLow)
		high = clamp(high*e.thresholds.HTBoostHigh, 0, e.thresholds.HTCeilingHigh)
	} else {
		low = clamp(low, 0, 1)
		high = clamp(high, 0, 1)
	}
	if high > low {
		high = low
	}

	return models.ProbabilityResult{
		PLow:       low,
		PHigh:      high,
		Confidence: e.confidence(indicators),
		Indicators: indicators,
	}
}

// confidence shrinks as the primary indicators disagree
func (e *ProbabilityEngine) confidence(indicators map[models.Indicator]models.ProbabilityPair) float64 {
	lows := make([]float64, 0, len(models.PrimaryIndicators))
	highs := make([]float64, 0, len(models.PrimaryIndicators))
	for _, ind := range models.PrimaryIndicators {
		lows = append(lows, indicators[ind].Low)
		highs = append(highs, indicators[ind].High)
	}

	meanStdDev := (stdDev(lows) + stdDev(highs)) / 2
	c := math.Max(e.model.MinConfidence, 1-e.model.DispersionScale*meanStdDev)
	return clamp(c, 0, 1)
}

// stdDev is the population standard deviation; an empty slice has none
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
