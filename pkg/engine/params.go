package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// weightTolerance bounds how far the indicator weights may drift from 1.0
const weightTolerance = 1e-6

var (
	// ErrInvalidWeights is returned when indicator weights are negative or do not sum to 1.0
	ErrInvalidWeights = errors.New("invalid indicator weights")
	// ErrInvalidParams is returned for malformed thresholds or model constants
	ErrInvalidParams = errors.New("invalid engine params")
)

// ValidateWeights checks that every weight is non-negative and the total is 1.0
func ValidateWeights(w models.IndicatorWeights) error {
	for _, ind := range models.AllIndicators {
		if v := w.For(ind); v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight is %v", ErrInvalidWeights, ind, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.8f, expected 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// ValidateThresholds checks the value-detection and staking limits
func ValidateThresholds(t models.Thresholds) error {
	switch {
	case t.MinOdds < 1.0:
		return fmt.Errorf("%w: min_odds %.2f below 1.0", ErrInvalidParams, t.MinOdds)
	case t.MaxOdds <= t.MinOdds:
		return fmt.Errorf("%w: max_odds %.2f not above min_odds %.2f", ErrInvalidParams, t.MaxOdds, t.MinOdds)
	case !isFraction(t.MinProbOverLow), !isFraction(t.MinProbOverHigh):
		return fmt.Errorf("%w: minimum probabilities must be within [0, 1]", ErrInvalidParams)
	case t.KellyFraction <= 0 || t.KellyFraction > 1:
		return fmt.Errorf("%w: kelly_fraction %.2f outside (0, 1]", ErrInvalidParams, t.KellyFraction)
	case t.MaxStakeFraction <= 0 || t.MaxStakeFraction > 1:
		return fmt.Errorf("%w: max_stake_fraction %.2f outside (0, 1]", ErrInvalidParams, t.MaxStakeFraction)
	case t.HTBoostLow < 1 || t.HTBoostHigh < 1:
		return fmt.Errorf("%w: half-time boosts must be >= 1", ErrInvalidParams)
	case t.HTCeilingLow <= 0 || t.HTCeilingLow > 1 || t.HTCeilingHigh <= 0 || t.HTCeilingHigh > 1:
		return fmt.Errorf("%w: half-time ceilings must be within (0, 1]", ErrInvalidParams)
	case t.MinEVPercent < -100:
		return fmt.Errorf("%w: min_ev_percent %.2f below -100", ErrInvalidParams, t.MinEVPercent)
	}
	return nil
}

// ValidateModel checks the indicator bands, priors and fallbacks
func ValidateModel(m models.ModelParams) error {
	pairs := map[string]models.ProbabilityPair{
		"h2h_prior":               m.HeadToHeadPrior,
		"offensive_strength.base": m.OffensiveStrength.Base,
		"offensive_strength.cap":  m.OffensiveStrength.Cap,
		"offensive_trend.base":    m.OffensiveTrend.Base,
		"offensive_trend.cap":     m.OffensiveTrend.Cap,
		"early_season":            m.EarlySeason,
		"mid_season":              m.MidSeason,
		"late_season":             m.LateSeason,
		"contested_table":         m.ContestedTable,
		"mid_table":               m.MidTable,
		"important_match":         m.ImportantMatch,
		"routine_match":           m.RoutineMatch,
	}
	for name, p := range pairs {
		if !isFraction(p.Low) || !isFraction(p.High) {
			return fmt.Errorf("%w: %s must be within [0, 1]", ErrInvalidParams, name)
		}
	}

	switch {
	case m.MinHeadToHeadGames < 1:
		return fmt.Errorf("%w: min_h2h_games must be >= 1", ErrInvalidParams)
	case m.EarlySeasonBefore >= m.MidSeasonBefore:
		return fmt.Errorf("%w: early season band must end before mid season band", ErrInvalidParams)
	case m.TopTableMax >= m.BottomTableMin:
		return fmt.Errorf("%w: top-of-table band overlaps bottom-of-table band", ErrInvalidParams)
	case m.CloseRankGap < 0:
		return fmt.Errorf("%w: close_rank_gap must be >= 0", ErrInvalidParams)
	case !isFraction(m.MinConfidence):
		return fmt.Errorf("%w: min_confidence must be within [0, 1]", ErrInvalidParams)
	case m.DispersionScale < 0:
		return fmt.Errorf("%w: dispersion_scale must be >= 0", ErrInvalidParams)
	}
	return nil
}

// ValidateParams checks a complete engine configuration
func ValidateParams(p models.EngineParams) error {
	if err := ValidateWeights(p.Weights); err != nil {
		return err
	}
	if err := ValidateThresholds(p.Thresholds); err != nil {
		return err
	}
	if err := ValidateModel(p.Model); err != nil {
		return err
	}
	if p.Bankroll.IsNegative() {
		return fmt.Errorf("%w: bankroll must not be negative", ErrInvalidParams)
	}
	return nil
}

// ValidateCriteria checks a league highlight gate
func ValidateCriteria(c models.LeagueCriteria) error {
	switch {
	case c.MinSampleGames < 1:
		return fmt.Errorf("%w: min_sample_games must be >= 1", ErrInvalidParams)
	case c.MinHTSampleGames < 1:
		return fmt.Errorf("%w: min_ht_sample_games must be >= 1", ErrInvalidParams)
	case c.MinTeamAvgGoals < 0 || c.MinTeamAvgGoalsHT < 0:
		return fmt.Errorf("%w: average goal minimums must be >= 0", ErrInvalidParams)
	}
	return nil
}

func isFraction(v float64) bool {
	return v >= 0 && v <= 1
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
