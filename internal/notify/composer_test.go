package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

func setupTestComposer() *Composer {
	return NewComposer(decimal.NewFromInt(1000), models.DefaultThresholds())
}

func baseEvaluation() *models.Evaluation {
	return &models.Evaluation{
		FixtureID:  "1035045",
		LeagueCode: "ENG1",
		LeagueName: "Premier League",
		HomeTeam:   "Arsenal",
		AwayTeam:   "Brighton",
		Kickoff:    time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
	}
}

// TestComposer_Opportunity tests the positive-value message
func TestComposer_Opportunity(t *testing.T) {
	c := setupTestComposer()
	eval := baseEvaluation()
	eval.Comparison = &models.MarketComparison{
		HasOpportunity: true,
		Best: &models.Opportunity{
			Market:        models.MarketOverHigh,
			Probability:   0.72,
			Odds:          1.50,
			FairOdds:      1 / 0.72,
			EVPercent:     8,
			StakeFraction: 0.04,
			StakeAmount:   decimal.NewFromInt(40),
			Confidence:    1,
		},
		Alternative: &models.Opportunity{
			Market:      models.MarketOverLow,
			Odds:        1.20,
			EVPercent:   5.6,
			StakeAmount: decimal.NewFromFloat(12.5),
		},
	}

	msg := c.Opportunity(eval)

	assert.Contains(t, msg, "Arsenal vs Brighton")
	assert.Contains(t, msg, "League: Premier League")
	assert.Contains(t, msg, "Kick-off: 01/03 15:00 UTC")
	assert.Contains(t, msg, "Market: Over 1.5")
	assert.Contains(t, msg, "Probability: 72.0%")
	assert.Contains(t, msg, "Odds: 1.50 (fair 1.39)")
	assert.Contains(t, msg, "Expected value: +8.0%")
	assert.Contains(t, msg, "Stake: 40.00 (4.00% of bankroll 1000, Kelly x0.25)")
	assert.Contains(t, msg, "Also value: Over 0.5 @ 1.20, EV +5.6%, stake 12.50")
	assert.NotContains(t, msg, "[dry run]")
}

// TestComposer_OpportunityDryRun tests the dry-run marker
func TestComposer_OpportunityDryRun(t *testing.T) {
	c := setupTestComposer()
	eval := baseEvaluation()
	eval.DryRun = true
	eval.Comparison = &models.MarketComparison{
		HasOpportunity: true,
		Best: &models.Opportunity{
			Market:      models.MarketOverLow,
			Odds:        1.30,
			StakeAmount: decimal.NewFromInt(10),
		},
	}

	msg := c.Opportunity(eval)

	assert.Contains(t, msg, "[dry run]")
	assert.NotContains(t, msg, "Also value")
}

// TestComposer_ExplainOnly tests the negative-value message and its simulation
func TestComposer_ExplainOnly(t *testing.T) {
	c := setupTestComposer()
	exp := models.MarketExplanation{
		Market:      models.MarketOverHigh,
		Probability: 0.55,
		Odds:        1.50,
		FairOdds:    1 / 0.55,
		EV:          -0.175,
		EVPercent:   -17.5,
		Rejected:    models.RejectProbabilityTooLow,
	}

	msg := c.ExplainOnly(baseEvaluation(), exp)

	assert.Contains(t, msg, "NO VALUE")
	assert.Contains(t, msg, "Probability: 55.0%")
	assert.Contains(t, msg, "Expected value: -17.5%")
	assert.Contains(t, msg, "Rejected: probability below the market minimum")
	assert.Contains(t, msg, "Fair odds: 1.82, offered 1.50 (-0.32)")
	assert.Contains(t, msg, "100 bets of 10:")
	assert.Contains(t, msg, "Staked: 1000")
	assert.Contains(t, msg, "Expected return: 825")
	assert.Contains(t, msg, "Expected result: -175")
	assert.Contains(t, msg, "at least +5.0%")
}

// TestComposer_CycleSummary tests the admin report
func TestComposer_CycleSummary(t *testing.T) {
	c := setupTestComposer()

	msg := c.CycleSummary(models.CycleSummary{
		StartedAt:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Duration:         83250 * time.Millisecond,
		LeaguesProcessed: 10,
		FixturesAnalyzed: 42,
		Highlighted:      9,
		Opportunities:    3,
		Notifications:    3,
		APIRequests:      117,
	})

	assert.Contains(t, msg, "Started: 2025-03-01 09:00 UTC")
	assert.Contains(t, msg, "Leagues: 10")
	assert.Contains(t, msg, "Fixtures: 42")
	assert.Contains(t, msg, "Opportunities: 3")
	assert.Contains(t, msg, "API requests: 117")
	assert.Contains(t, msg, "Duration: 1m23.3s")
}

// TestSimulate tests the flat-stake simulation
func TestSimulate(t *testing.T) {
	staked, returned := simulate(0.8, 1.10)

	assert.Equal(t, 1000.0, staked)
	assert.InDelta(t, 880, returned, 1e-9)
}

// TestComposer_KickoffInLeagueTimezone tests that kick-off times use the league's local clock
func TestComposer_KickoffInLeagueTimezone(t *testing.T) {
	c := NewComposer(decimal.NewFromInt(1000), models.DefaultThresholds(),
		models.League{Code: "ESP1", Timezone: "Europe/Madrid"},
		models.League{Code: "BRA1", Timezone: "America/Sao_Paulo"},
		models.League{Code: "XXX1", Timezone: "Nowhere/Invalid"},
	)
	exp := models.MarketExplanation{Market: models.MarketOverHigh, Probability: 0.6, Odds: 1.3}

	tests := []struct {
		league string
		want   string
	}{
		{"ESP1", "Kick-off: 01/03 16:00 CET"},
		{"BRA1", "Kick-off: 01/03 12:00"},
		{"XXX1", "Kick-off: 01/03 15:00 UTC"},
		{"ENG1", "Kick-off: 01/03 15:00 UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.league, func(t *testing.T) {
			eval := baseEvaluation()
			eval.LeagueCode = tt.league

			assert.Contains(t, c.ExplainOnly(eval, exp), tt.want)
		})
	}
}
