// Package engine scores football fixtures against goal-line markets.
//
// The engine is pure: it holds only immutable parameters, performs no I/O and
// is safe for concurrent use without synchronization.
package engine

import (
	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// Engine chains the highlight criteria, the probability model and the EV judgement
type Engine struct {
	params      models.EngineParams
	probability *ProbabilityEngine
	ev          *EVEngine
}

// FixtureInput is a fully resolved fixture ready for scoring
type FixtureInput struct {
	Home          models.TeamStatSnapshot
	Away          models.TeamStatSnapshot
	HomeHT        *models.TeamAverage
	AwayHT        *models.TeamAverage
	HeadToHead    models.HeadToHeadRecord
	Context       models.MatchContext
	IsHTScoreless bool
	Odds          models.MarketOdds
}

// Decision is the engine output for one fixture; Probability and Comparison
// are nil when the fixture did not pass the criteria
type Decision struct {
	Criteria    models.CriteriaResult
	Probability *models.ProbabilityResult
	Comparison  *models.MarketComparison
}

// New validates params and builds the engine
func New(params models.EngineParams) (*Engine, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	probability, err := NewProbabilityEngine(params.Weights, params.Thresholds, params.Model)
	if err != nil {
		return nil, err
	}

	ev, err := NewEVEngine(params.Thresholds, params.Bankroll)
	if err != nil {
		return nil, err
	}

	return &Engine{
		params:      params,
		probability: probability,
		ev:          ev,
	}, nil
}

// Params returns the engine configuration
func (e *Engine) Params() models.EngineParams {
	return e.params
}

// Probability returns the probability engine
func (e *Engine) Probability() *ProbabilityEngine {
	return e.probability
}

// EV returns the EV engine
func (e *Engine) EV() *EVEngine {
	return e.ev
}

// Decide runs the full pipeline for one fixture under the given league criteria
func (e *Engine) Decide(criteria *CriteriaEvaluator, in FixtureInput) Decision {
	result := criteria.Evaluate(
		models.TeamAverage{AvgGoals: in.Home.GoalsPerGame, SampleSize: in.Home.SampleSize},
		models.TeamAverage{AvgGoals: in.Away.GoalsPerGame, SampleSize: in.Away.SampleSize},
		in.HomeHT,
		in.AwayHT,
	)

	decision := Decision{Criteria: result}
	if !result.Meets {
		return decision
	}

	prob := e.probability.Estimate(in.Home, in.Away, in.HeadToHead, in.Context, in.IsHTScoreless)
	comparison := e.ev.CompareMarkets(
		models.MarketQuote{
			Market:      models.MarketOverLow,
			Probability: prob.PLow,
			Odds:        in.Odds.OverLow,
			Confidence:  prob.Confidence,
		},
		models.MarketQuote{
			Market:      models.MarketOverHigh,
			Probability: prob.PHigh,
			Odds:        in.Odds.OverHigh,
			Confidence:  prob.Confidence,
		},
	)

	decision.Probability = &prob
	decision.Comparison = &comparison
	return decision
}
