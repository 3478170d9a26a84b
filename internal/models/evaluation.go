package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Market identifies a goal-line market
type Market string

const (
	MarketOverLow  Market = "over_0_5"
	MarketOverHigh Market = "over_1_5"
)

// Label returns the bookmaker-style market name
func (m Market) Label() string {
	switch m {
	case MarketOverLow:
		return "Over 0.5"
	case MarketOverHigh:
		return "Over 1.5"
	}
	return string(m)
}

// CriteriaReason explains the outcome of the highlight criteria
type CriteriaReason string

const (
	ReasonInsufficientSample CriteriaReason = "insufficient_sample"
	ReasonNoCriteriaMet      CriteriaReason = "no_criteria_met"
	ReasonFulltimeCriteria   CriteriaReason = "fulltime_criteria"
	ReasonHalftimeCriteria   CriteriaReason = "halftime_criteria"
	ReasonBothCriteria       CriteriaReason = "both_criteria"
)

// CriteriaResult is the outcome of the highlight gate
type CriteriaResult struct {
	Meets  bool           `json:"meets"`
	Reason CriteriaReason `json:"reason"`
}

// ProbabilityResult is the model estimate for both thresholds
type ProbabilityResult struct {
	PLow       float64                       `json:"p_low"`
	PHigh      float64                       `json:"p_high"`
	Confidence float64                       `json:"confidence"`
	Indicators map[Indicator]ProbabilityPair `json:"indicators,omitempty"`
}

// MarketQuote is a model probability paired with a bookmaker price
type MarketQuote struct {
	Market      Market  `json:"market"`
	Probability float64 `json:"probability"`
	Odds        float64 `json:"odds"`
	Confidence  float64 `json:"confidence"`
}

// RejectReason explains why a quote is not an opportunity
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectOddsUnavailable   RejectReason = "odds_unavailable"
	RejectOddsOutOfRange    RejectReason = "odds_out_of_range"
	RejectProbabilityTooLow RejectReason = "probability_below_minimum"
	RejectInsufficientValue RejectReason = "ev_below_minimum"
)

// Opportunity is a value bet recommended by the EV engine
type Opportunity struct {
	Market        Market          `json:"market"`
	Probability   float64         `json:"probability"`
	Odds          float64         `json:"odds"`
	FairOdds      float64         `json:"fair_odds"`
	EV            float64         `json:"ev"`
	EVPercent     float64         `json:"ev_percent"`
	KellyFull     float64         `json:"kelly_full"`
	StakeFraction float64         `json:"stake_fraction"`
	StakeAmount   decimal.Decimal `json:"stake_amount"`
	Confidence    float64         `json:"confidence"`
	IsPositive    bool            `json:"is_positive"`
}

// Score is the ranking key used when comparing markets
func (o *Opportunity) Score() float64 {
	return o.EVPercent * o.Confidence
}

// MarketExplanation records the raw value judgement of one market
type MarketExplanation struct {
	Market      Market       `json:"market"`
	Probability float64      `json:"probability"`
	Odds        float64      `json:"odds"`
	FairOdds    float64      `json:"fair_odds"`
	EV          float64      `json:"ev"`
	EVPercent   float64      `json:"ev_percent"`
	Rejected    RejectReason `json:"rejected,omitempty"`
}

// MarketComparison is the outcome of comparing the goal markets of a fixture
type MarketComparison struct {
	HasOpportunity bool                `json:"has_opportunity"`
	Best           *Opportunity        `json:"best,omitempty"`
	Alternative    *Opportunity        `json:"alternative,omitempty"`
	Explanations   []MarketExplanation `json:"explanations"`
}

// Evaluation is the full decision record for one fixture
type Evaluation struct {
	ID          uuid.UUID          `json:"id"`
	FixtureID   string             `json:"fixture_id"`
	LeagueCode  string             `json:"league_code"`
	LeagueName  string             `json:"league_name,omitempty"`
	HomeTeam    string             `json:"home_team"`
	AwayTeam    string             `json:"away_team"`
	Kickoff     time.Time          `json:"kickoff"`
	Criteria    CriteriaResult     `json:"criteria"`
	Probability *ProbabilityResult `json:"probability,omitempty"`
	Comparison  *MarketComparison  `json:"comparison,omitempty"`
	DryRun      bool               `json:"dry_run"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}

// CycleSummary reports one pass over the configured leagues
type CycleSummary struct {
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	LeaguesProcessed int           `json:"leagues_processed"`
	FixturesAnalyzed int           `json:"fixtures_analyzed"`
	Highlighted      int           `json:"highlighted"`
	Opportunities    int           `json:"opportunities"`
	Notifications    int           `json:"notifications"`
	APIRequests      int           `json:"api_requests"`
	DryRun           bool          `json:"dry_run"`
}

// KafkaFixtureMessage is the inbound batch of fixture snapshots
type KafkaFixtureMessage struct {
	Fixtures  []FixtureSnapshot `json:"fixtures"`
	Timestamp time.Time         `json:"timestamp"`
	BatchID   string            `json:"batch_id"`
}

// KafkaEvaluationMessage is the outbound batch of evaluations
type KafkaEvaluationMessage struct {
	Evaluations []Evaluation `json:"evaluations"`
	Timestamp   time.Time    `json:"timestamp"`
	BatchID     string       `json:"batch_id"`
}

// Percent converts a fraction to percent for display
func Percent(fraction float64) float64 {
	return fraction * 100
}
