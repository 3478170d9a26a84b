package models

import (
	"github.com/shopspring/decimal"
)

// Indicator names one of the nine inputs of the probability model
type Indicator string

const (
	IndicatorPoisson           Indicator = "poisson"
	IndicatorHistoricalRate    Indicator = "historical_rate"
	IndicatorRecentTrend       Indicator = "recent_trend"
	IndicatorHeadToHead        Indicator = "h2h"
	IndicatorOffensiveStrength Indicator = "offensive_strength"
	IndicatorOffensiveTrend    Indicator = "offensive_trend"
	IndicatorSeasonPhase       Indicator = "season_phase"
	IndicatorMotivation        Indicator = "motivation"
	IndicatorMatchImportance   Indicator = "match_importance"
)

// AllIndicators lists the indicators in evaluation order
var AllIndicators = []Indicator{
	IndicatorPoisson,
	IndicatorHistoricalRate,
	IndicatorRecentTrend,
	IndicatorHeadToHead,
	IndicatorOffensiveStrength,
	IndicatorOffensiveTrend,
	IndicatorSeasonPhase,
	IndicatorMotivation,
	IndicatorMatchImportance,
}

// PrimaryIndicators feed the confidence estimate
var PrimaryIndicators = []Indicator{
	IndicatorPoisson,
	IndicatorHistoricalRate,
	IndicatorRecentTrend,
	IndicatorHeadToHead,
}

// ProbabilityPair holds a probability for the low (Over 0.5) and high (Over 1.5) thresholds
type ProbabilityPair struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// IndicatorWeights maps each indicator to its share of the final probability
type IndicatorWeights struct {
	Poisson           float64 `json:"poisson"`
	HistoricalRate    float64 `json:"historical_rate"`
	RecentTrend       float64 `json:"recent_trend"`
	HeadToHead        float64 `json:"h2h"`
	OffensiveStrength float64 `json:"offensive_strength"`
	OffensiveTrend    float64 `json:"offensive_trend"`
	SeasonPhase       float64 `json:"season_phase"`
	Motivation        float64 `json:"motivation"`
	MatchImportance   float64 `json:"match_importance"`
}

// For returns the weight of a single indicator
func (w IndicatorWeights) For(ind Indicator) float64 {
	switch ind {
	case IndicatorPoisson:
		return w.Poisson
	case IndicatorHistoricalRate:
		return w.HistoricalRate
	case IndicatorRecentTrend:
		return w.RecentTrend
	case IndicatorHeadToHead:
		return w.HeadToHead
	case IndicatorOffensiveStrength:
		return w.OffensiveStrength
	case IndicatorOffensiveTrend:
		return w.OffensiveTrend
	case IndicatorSeasonPhase:
		return w.SeasonPhase
	case IndicatorMotivation:
		return w.Motivation
	case IndicatorMatchImportance:
		return w.MatchImportance
	}
	return 0
}

// Sum returns the total of all weights
func (w IndicatorWeights) Sum() float64 {
	var total float64
	for _, ind := range AllIndicators {
		total += w.For(ind)
	}
	return total
}

// DefaultIndicatorWeights returns the production weighting
func DefaultIndicatorWeights() IndicatorWeights {
	return IndicatorWeights{
		Poisson:           0.25,
		HistoricalRate:    0.15,
		RecentTrend:       0.10,
		HeadToHead:        0.12,
		OffensiveStrength: 0.10,
		OffensiveTrend:    0.08,
		SeasonPhase:       0.08,
		Motivation:        0.07,
		MatchImportance:   0.05,
	}
}

// Thresholds holds the value-detection and staking limits
type Thresholds struct {
	MinEVPercent     float64 // Minimum EV in percent (5.0 = +5%)
	MinProbOverLow   float64 // Minimum probability for Over 0.5 (0-1)
	MinProbOverHigh  float64 // Minimum probability for Over 1.5 (0-1)
	MinOdds          float64
	MaxOdds          float64
	KellyFraction    float64 // Share of full Kelly actually staked (0.25 = quarter Kelly)
	MaxStakeFraction float64 // Hard cap on stake as a bankroll fraction
	HTBoostLow       float64 // Multiplier on Over 0.5 when HT is 0-0
	HTBoostHigh      float64 // Multiplier on Over 1.5 when HT is 0-0
	HTCeilingLow     float64
	HTCeilingHigh    float64
}

// DefaultThresholds returns the production thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinEVPercent:     5.0,
		MinProbOverLow:   0.70,
		MinProbOverHigh:  0.60,
		MinOdds:          1.10,
		MaxOdds:          3.00,
		KellyFraction:    0.25,
		MaxStakeFraction: 0.05,
		HTBoostLow:       1.05,
		HTBoostHigh:      1.15,
		HTCeilingLow:     0.98,
		HTCeilingHigh:    0.95,
	}
}

// LeagueCriteria holds the highlight gate for one league
type LeagueCriteria struct {
	MinTeamAvgGoals   float64 `json:"min_team_avg_goals"`
	MinTeamAvgGoalsHT float64 `json:"min_team_avg_goals_ht"`
	MinSampleGames    int     `json:"min_sample_games"`
	MinHTSampleGames  int     `json:"min_ht_sample_games"`
}

// DefaultLeagueCriteria is used for leagues without their own entry
func DefaultLeagueCriteria() LeagueCriteria {
	return LeagueCriteria{
		MinTeamAvgGoals:   2.20,
		MinTeamAvgGoalsHT: 1.00,
		MinSampleGames:    4,
		MinHTSampleGames:  3,
	}
}

// SaturatingCurve maps a goal rate x to min(Cap, Base + Slope*x) per threshold
type SaturatingCurve struct {
	Base  ProbabilityPair
	Cap   ProbabilityPair
	Slope float64
}

// ModelParams holds every band, prior and fallback used by the indicators
type ModelParams struct {
	HeadToHeadPrior    ProbabilityPair
	MinHeadToHeadGames int
	OffensiveStrength  SaturatingCurve
	OffensiveTrend     SaturatingCurve

	EarlySeasonBefore float64 // games played below this = early season
	MidSeasonBefore   float64 // games played below this = mid season
	EarlySeason       ProbabilityPair
	MidSeason         ProbabilityPair
	LateSeason        ProbabilityPair

	TopTableMax     float64 // average position at or above this (numerically <=) = title race
	BottomTableMin  float64 // average position at or below this (numerically >=) = relegation fight
	ContestedTable  ProbabilityPair
	MidTable        ProbabilityPair
	CloseRankGap    int
	ImportantMatch  ProbabilityPair
	RoutineMatch    ProbabilityPair
	MinConfidence   float64
	DispersionScale float64
}

// DefaultModelParams returns the production model constants
func DefaultModelParams() ModelParams {
	curve := SaturatingCurve{
		Base:  ProbabilityPair{Low: 0.50, High: 0.30},
		Cap:   ProbabilityPair{Low: 0.95, High: 0.85},
		Slope: 0.15,
	}
	return ModelParams{
		HeadToHeadPrior:    ProbabilityPair{Low: 0.75, High: 0.60},
		MinHeadToHeadGames: 3,
		OffensiveStrength:  curve,
		OffensiveTrend:     curve,
		EarlySeasonBefore:  10,
		MidSeasonBefore:    25,
		EarlySeason:        ProbabilityPair{Low: 0.65, High: 0.45},
		MidSeason:          ProbabilityPair{Low: 0.75, High: 0.55},
		LateSeason:         ProbabilityPair{Low: 0.70, High: 0.50},
		TopTableMax:        6,
		BottomTableMin:     15,
		ContestedTable:     ProbabilityPair{Low: 0.75, High: 0.55},
		MidTable:           ProbabilityPair{Low: 0.70, High: 0.50},
		CloseRankGap:       3,
		ImportantMatch:     ProbabilityPair{Low: 0.75, High: 0.55},
		RoutineMatch:       ProbabilityPair{Low: 0.70, High: 0.50},
		MinConfidence:      0.4,
		DispersionScale:    2,
	}
}

// EngineParams is the immutable configuration of the decision engine
type EngineParams struct {
	Weights    IndicatorWeights
	Thresholds Thresholds
	Model      ModelParams
	Bankroll   decimal.Decimal // Used only to express stakes as an amount
}

// DefaultEngineParams returns the full production configuration
func DefaultEngineParams() EngineParams {
	return EngineParams{
		Weights:    DefaultIndicatorWeights(),
		Thresholds: DefaultThresholds(),
		Model:      DefaultModelParams(),
		Bankroll:   decimal.NewFromInt(1000),
	}
}
