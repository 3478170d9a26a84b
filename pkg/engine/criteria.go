package engine

import (
	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// CriteriaEvaluator decides whether a fixture is worth scoring at all
type CriteriaEvaluator struct {
	criteria models.LeagueCriteria
}

// NewCriteriaEvaluator creates an evaluator for one league's thresholds
func NewCriteriaEvaluator(criteria models.LeagueCriteria) (*CriteriaEvaluator, error) {
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}
	return &CriteriaEvaluator{criteria: criteria}, nil
}

// Criteria returns the thresholds the evaluator applies
func (c *CriteriaEvaluator) Criteria() models.LeagueCriteria {
	return c.criteria
}

// Evaluate applies the sample gate, then the full-time and half-time averages.
// Half-time pairs are optional; both must be present with enough games to count.
func (c *CriteriaEvaluator) Evaluate(home, away models.TeamAverage, homeHT, awayHT *models.TeamAverage) models.CriteriaResult {
	if home.SampleSize < c.criteria.MinSampleGames || away.SampleSize < c.criteria.MinSampleGames {
		return models.CriteriaResult{Meets: false, Reason: models.ReasonInsufficientSample}
	}

	fulltime := home.AvgGoals >= c.criteria.MinTeamAvgGoals || away.AvgGoals >= c.criteria.MinTeamAvgGoals

	halftime := false
	if homeHT != nil && awayHT != nil &&
		homeHT.SampleSize >= c.criteria.MinHTSampleGames &&
		awayHT.SampleSize >= c.criteria.MinHTSampleGames {
		halftime = homeHT.AvgGoals >= c.criteria.MinTeamAvgGoalsHT || awayHT.AvgGoals >= c.criteria.MinTeamAvgGoalsHT
	}

	switch {
	case fulltime && halftime:
		return models.CriteriaResult{Meets: true, Reason: models.ReasonBothCriteria}
	case fulltime:
		return models.CriteriaResult{Meets: true, Reason: models.ReasonFulltimeCriteria}
	case halftime:
		return models.CriteriaResult{Meets: true, Reason: models.ReasonHalftimeCriteria}
	default:
		return models.CriteriaResult{Meets: false, Reason: models.ReasonNoCriteriaMet}
	}
}
