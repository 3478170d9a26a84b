package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// Simulation constants for the explain-only message
const (
	simulatedBets  = 100
	simulatedStake = 10
)

// Composer renders evaluations as plain-text chat messages
type Composer struct {
	bankroll     decimal.Decimal
	minEVPercent float64
	kellyShare   float64
	locations    map[string]*time.Location // league code -> kick-off timezone
}

// NewComposer creates a composer for the given bankroll and value thresholds.
// Kick-off times of the given leagues are shown in the league's timezone, others in UTC.
func NewComposer(bankroll decimal.Decimal, thresholds models.Thresholds, leagues ...models.League) *Composer {
	c := &Composer{
		bankroll:     bankroll,
		minEVPercent: thresholds.MinEVPercent,
		kellyShare:   thresholds.KellyFraction,
		locations:    make(map[string]*time.Location, len(leagues)),
	}
	for _, league := range leagues {
		if loc, err := time.LoadLocation(league.Timezone); err == nil && league.Timezone != "" {
			c.locations[league.Code] = loc
		}
	}
	return c
}

// Opportunity renders the recommended bet of an evaluation; eval.Comparison.Best must be set
func (c *Composer) Opportunity(eval *models.Evaluation) string {
	best := eval.Comparison.Best
	var b strings.Builder

	b.WriteString("VALUE BET\n\n")
	c.writeFixture(&b, eval)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Market: %s\n", best.Market.Label())
	fmt.Fprintf(&b, "Probability: %.1f%%\n", models.Percent(best.Probability))
	fmt.Fprintf(&b, "Odds: %.2f (fair %.2f)\n", best.Odds, best.FairOdds)
	fmt.Fprintf(&b, "Expected value: +%.1f%%\n", best.EVPercent)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n\n", models.Percent(best.Confidence))
	fmt.Fprintf(&b, "Stake: %s (%.2f%% of bankroll %s, Kelly x%.2f)\n",
		best.StakeAmount.StringFixed(2), models.Percent(best.StakeFraction), c.bankroll.StringFixed(0), c.kellyShare)

	if alt := eval.Comparison.Alternative; alt != nil {
		fmt.Fprintf(&b, "\nAlso value: %s @ %.2f, EV +%.1f%%, stake %s\n",
			alt.Market.Label(), alt.Odds, alt.EVPercent, alt.StakeAmount.StringFixed(2))
	}

	if eval.DryRun {
		b.WriteString("\n[dry run]\n")
	}
	return b.String()
}

// ExplainOnly renders why a priced market is not worth betting
func (c *Composer) ExplainOnly(eval *models.Evaluation, exp models.MarketExplanation) string {
	var b strings.Builder

	b.WriteString("NO VALUE\n\n")
	c.writeFixture(&b, eval)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Market: %s\n", exp.Market.Label())
	fmt.Fprintf(&b, "Probability: %.1f%%\n", models.Percent(exp.Probability))
	fmt.Fprintf(&b, "Odds offered: %.2f\n", exp.Odds)
	fmt.Fprintf(&b, "Expected value: %.1f%%\n", exp.EVPercent)
	if exp.Rejected != models.RejectNone {
		fmt.Fprintf(&b, "Rejected: %s\n", rejectLabel(exp.Rejected))
	}

	if exp.FairOdds > 0 {
		fmt.Fprintf(&b, "\nFair odds: %.2f, offered %.2f (%+.2f)\n", exp.FairOdds, exp.Odds, exp.Odds-exp.FairOdds)
	}

	staked, returned := simulate(exp.Probability, exp.Odds)
	fmt.Fprintf(&b, "\n%d bets of %d:\n", simulatedBets, simulatedStake)
	fmt.Fprintf(&b, "Staked: %.0f\n", staked)
	fmt.Fprintf(&b, "Expected return: %.0f\n", returned)
	fmt.Fprintf(&b, "Expected result: %+.0f\n", returned-staked)
	fmt.Fprintf(&b, "\nOnly bets with EV of at least +%.1f%% are recommended.\n", c.minEVPercent)

	return b.String()
}

// CycleSummary renders the report sent after an analysis cycle
func (c *Composer) CycleSummary(s models.CycleSummary) string {
	var b strings.Builder

	b.WriteString("ANALYSIS REPORT\n\n")
	fmt.Fprintf(&b, "Started: %s\n", s.StartedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Leagues: %d\n", s.LeaguesProcessed)
	fmt.Fprintf(&b, "Fixtures: %d\n", s.FixturesAnalyzed)
	fmt.Fprintf(&b, "Highlighted: %d\n", s.Highlighted)
	fmt.Fprintf(&b, "Opportunities: %d\n", s.Opportunities)
	fmt.Fprintf(&b, "Notifications: %d\n", s.Notifications)
	fmt.Fprintf(&b, "API requests: %d\n", s.APIRequests)
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration.Round(100*time.Millisecond))
	if s.DryRun {
		b.WriteString("\n[dry run]\n")
	}
	return b.String()
}

func (c *Composer) writeFixture(b *strings.Builder, eval *models.Evaluation) {
	fmt.Fprintf(b, "%s vs %s\n", eval.HomeTeam, eval.AwayTeam)
	if eval.LeagueName != "" {
		fmt.Fprintf(b, "League: %s\n", eval.LeagueName)
	} else if eval.LeagueCode != "" {
		fmt.Fprintf(b, "League: %s\n", eval.LeagueCode)
	}
	if !eval.Kickoff.IsZero() {
		loc, ok := c.locations[eval.LeagueCode]
		if !ok {
			loc = time.UTC
		}
		fmt.Fprintf(b, "Kick-off: %s\n", eval.Kickoff.In(loc).Format("02/01 15:04 MST"))
	}
}

// simulate returns the total staked and the expected return of repeated flat bets
func simulate(probability, odds float64) (staked, returned float64) {
	staked = simulatedStake * simulatedBets
	returned = probability * odds * staked
	return staked, returned
}

func rejectLabel(r models.RejectReason) string {
	switch r {
	case models.RejectOddsUnavailable:
		return "odds not offered"
	case models.RejectOddsOutOfRange:
		return "odds outside the accepted range"
	case models.RejectProbabilityTooLow:
		return "probability below the market minimum"
	case models.RejectInsufficientValue:
		return "expected value below the minimum"
	}
	return string(r)
}
