package engine

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// EVEngine judges market prices against model probabilities and sizes stakes
type EVEngine struct {
	thresholds models.Thresholds
	bankroll   decimal.Decimal
}

// NewEVEngine creates an EV engine
func NewEVEngine(thresholds models.Thresholds, bankroll decimal.Decimal) (*EVEngine, error) {
	if err := ValidateThresholds(thresholds); err != nil {
		return nil, err
	}
	return &EVEngine{
		thresholds: thresholds,
		bankroll:   bankroll,
	}, nil
}

// ExpectedValue returns probability*odds - 1
func ExpectedValue(probability, odds float64) float64 {
	return probability*odds - 1
}

// KellyFraction returns the full Kelly stake (b*p - q) / b clamped to [0, 1].
// Odds at or below 1.0 leave nothing to win and size to zero.
func KellyFraction(probability, odds float64) float64 {
	b := odds - 1
	if b <= 0 {
		return 0
	}
	p := probability
	q := 1 - p
	return clamp((b*p-q)/b, 0, 1)
}

// FairOdds returns the price implied by a probability, or zero when undefined
func FairOdds(probability float64) float64 {
	if probability <= 0 {
		return 0
	}
	return 1 / probability
}

// Analyze returns an opportunity when the quote passes every gate, nil otherwise
func (e *EVEngine) Analyze(q models.MarketQuote) *models.Opportunity {
	opp, _ := e.assess(q)
	return opp
}

// CompareMarkets analyzes both goal markets and picks the one with the best
// EV weighted by confidence. The explanations always carry the raw EV of each
// market, so a fixture with no opportunity can still be reported.
func (e *EVEngine) CompareMarkets(low, high models.MarketQuote) models.MarketComparison {
	lowOpp, lowExp := e.assess(low)
	highOpp, highExp := e.assess(high)

	best, alt := SelectBest(lowOpp, highOpp)
	return models.MarketComparison{
		HasOpportunity: best != nil,
		Best:           best,
		Alternative:    alt,
		Explanations:   []models.MarketExplanation{lowExp, highExp},
	}
}

// SelectBest ranks opportunities by EVPercent*Confidence and returns the best
// and the runner-up; nil entries are ignored
func SelectBest(opps ...*models.Opportunity) (best, alternative *models.Opportunity) {
	for _, o := range opps {
		if o == nil {
			continue
		}
		switch {
		case best == nil:
			best = o
		case o.Score() > best.Score():
			alternative = best
			best = o
		case alternative == nil || o.Score() > alternative.Score():
			alternative = o
		}
	}
	return best, alternative
}

func (e *EVEngine) assess(q models.MarketQuote) (*models.Opportunity, models.MarketExplanation) {
	exp := models.MarketExplanation{
		Market:      q.Market,
		Probability: q.Probability,
		Odds:        q.Odds,
		FairOdds:    FairOdds(q.Probability),
	}
	if q.Odds > 0 {
		exp.EV = ExpectedValue(q.Probability, q.Odds)
		exp.EVPercent = models.Percent(exp.EV)
	}

	switch {
	case q.Odds <= 0:
		exp.Rejected = models.RejectOddsUnavailable
	case q.Odds < e.thresholds.MinOdds || q.Odds > e.thresholds.MaxOdds:
		exp.Rejected = models.RejectOddsOutOfRange
	case q.Probability < e.minProbability(q.Market):
		exp.Rejected = models.RejectProbabilityTooLow
	case exp.EVPercent < e.thresholds.MinEVPercent:
		exp.Rejected = models.RejectInsufficientValue
	}
	if exp.Rejected != models.RejectNone {
		return nil, exp
	}

	kelly := KellyFraction(q.Probability, q.Odds)
	stake := e.stakeFraction(kelly, q.Confidence)

	return &models.Opportunity{
		Market:        q.Market,
		Probability:   q.Probability,
		Odds:          q.Odds,
		FairOdds:      exp.FairOdds,
		EV:            exp.EV,
		EVPercent:     exp.EVPercent,
		KellyFull:     kelly,
		StakeFraction: stake,
		StakeAmount:   e.bankroll.Mul(decimal.NewFromFloat(stake)).Round(2),
		Confidence:    q.Confidence,
		IsPositive:    exp.EV > 0,
	}, exp
}

// stakeFraction applies the conservative Kelly share, the hard cap, then scales by confidence
func (e *EVEngine) stakeFraction(kelly, confidence float64) float64 {
	stake := kelly * e.thresholds.KellyFraction
	if stake > e.thresholds.MaxStakeFraction {
		stake = e.thresholds.MaxStakeFraction
	}
	return stake * clamp(confidence, 0, 1)
}

func (e *EVEngine) minProbability(m models.Market) float64 {
	if m == models.MarketOverHigh {
		return e.thresholds.MinProbOverHigh
	}
	return e.thresholds.MinProbOverLow
}
