package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

func setupTestEngine(t *testing.T) *Engine {
	e, err := New(models.DefaultEngineParams())
	require.NoError(t, err)
	return e
}

func attackingInput() FixtureInput {
	home, away, h2h, ctx := attackingFixture()
	home.GoalsPerGame = 2.4
	return FixtureInput{
		Home:       home,
		Away:       away,
		HeadToHead: h2h,
		Context:    ctx,
		Odds:       models.MarketOdds{OverLow: 1.25, OverHigh: 1.70},
	}
}

// TestDecide_StopsAtCriteria tests that rejected fixtures are never scored
func TestDecide_StopsAtCriteria(t *testing.T) {
	e := setupTestEngine(t)
	criteria := setupTestCriteria(t)

	in := attackingInput()
	in.Away.SampleSize = 2

	decision := e.Decide(criteria, in)

	assert.False(t, decision.Criteria.Meets)
	assert.Equal(t, models.ReasonInsufficientSample, decision.Criteria.Reason)
	assert.Nil(t, decision.Probability)
	assert.Nil(t, decision.Comparison)
}

// TestDecide_FullPipeline tests that a highlighted fixture is priced against both markets
func TestDecide_FullPipeline(t *testing.T) {
	e := setupTestEngine(t)
	criteria := setupTestCriteria(t)
	in := attackingInput()

	decision := e.Decide(criteria, in)

	require.True(t, decision.Criteria.Meets)
	assert.Equal(t, models.ReasonFulltimeCriteria, decision.Criteria.Reason)
	require.NotNil(t, decision.Probability)
	require.NotNil(t, decision.Comparison)

	expected := e.Probability().Estimate(in.Home, in.Away, in.HeadToHead, in.Context, false)
	assert.InDelta(t, expected.PLow, decision.Probability.PLow, 1e-12)
	assert.InDelta(t, expected.PHigh, decision.Probability.PHigh, 1e-12)

	require.Len(t, decision.Comparison.Explanations, 2)
	low, high := decision.Comparison.Explanations[0], decision.Comparison.Explanations[1]
	assert.Equal(t, models.MarketOverLow, low.Market)
	assert.InDelta(t, decision.Probability.PLow*1.25-1, low.EV, 1e-12)
	assert.Equal(t, models.MarketOverHigh, high.Market)
	assert.InDelta(t, decision.Probability.PHigh*1.70-1, high.EV, 1e-12)

	if decision.Comparison.HasOpportunity {
		assert.Equal(t, decision.Probability.Confidence, decision.Comparison.Best.Confidence)
	}
}

// TestDecide_HalfTimeCriteriaAndScoreless tests the half-time route through the pipeline
func TestDecide_HalfTimeCriteriaAndScoreless(t *testing.T) {
	e := setupTestEngine(t)
	criteria := setupTestCriteria(t)

	in := attackingInput()
	in.Home.GoalsPerGame = 1.9
	in.HomeHT = avgPtr(1.3, 8)
	in.AwayHT = avgPtr(0.9, 8)

	base := e.Decide(criteria, in)
	require.True(t, base.Criteria.Meets)
	assert.Equal(t, models.ReasonHalftimeCriteria, base.Criteria.Reason)

	in.IsHTScoreless = true
	boosted := e.Decide(criteria, in)
	require.NotNil(t, boosted.Probability)
	assert.Greater(t, boosted.Probability.PLow, base.Probability.PLow)
	assert.Greater(t, boosted.Probability.PHigh, base.Probability.PHigh)
}

// TestDecide_NoOddsExplainsOnly tests that unpriced fixtures still produce explanations
func TestDecide_NoOddsExplainsOnly(t *testing.T) {
	e := setupTestEngine(t)
	criteria := setupTestCriteria(t)

	in := attackingInput()
	in.Odds = models.MarketOdds{}

	decision := e.Decide(criteria, in)

	require.NotNil(t, decision.Comparison)
	assert.False(t, decision.Comparison.HasOpportunity)
	assert.Nil(t, decision.Comparison.Best)
	for _, exp := range decision.Comparison.Explanations {
		assert.Equal(t, models.RejectOddsUnavailable, exp.Rejected)
		assert.Greater(t, exp.FairOdds, 1.0)
	}
}
