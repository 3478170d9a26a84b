package apifootball

import (
	"context"
	"errors"
	"strconv"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

const (
	historyGames = 10
	h2hGames     = 10
	trendGames   = 5
)

// Snapshot gathers team form, head-to-head history and odds for a fixture.
// Missing head-to-head data or odds degrade the snapshot; an exhausted request
// budget aborts it.
func (c *Client) Snapshot(ctx context.Context, league models.League, fx Fixture) (*models.FixtureSnapshot, error) {
	home, homeHT, err := c.teamForm(ctx, fx.Teams.Home.ID)
	if err != nil {
		return nil, err
	}
	away, awayHT, err := c.teamForm(ctx, fx.Teams.Away.ID)
	if err != nil {
		return nil, err
	}

	snap := &models.FixtureSnapshot{
		FixtureID:     strconv.Itoa(fx.Fixture.ID),
		LeagueCode:    league.Code,
		HomeTeam:      fx.Teams.Home.Name,
		AwayTeam:      fx.Teams.Away.Name,
		Kickoff:       fx.Fixture.Date,
		Home:          home,
		Away:          away,
		HomeHT:        homeHT,
		AwayHT:        awayHT,
		IsHTScoreless: fx.IsHTScoreless(),
	}

	if round, ok := fx.RoundNumber(); ok {
		played := float64(round - 1)
		snap.Context.GamesPlayedAvg = &played
	}

	meetings, err := c.HeadToHead(ctx, fx.Teams.Home.ID, fx.Teams.Away.ID, h2hGames)
	switch {
	case errors.Is(err, ErrBudgetExhausted):
		return nil, err
	case err != nil:
		c.logger.Warn().Err(err).Int("fixture_id", fx.Fixture.ID).Msg("head-to-head unavailable, using prior")
	default:
		record := SummarizeHeadToHead(meetings)
		snap.HeadToHead = &record
	}

	odds, err := c.OverOdds(ctx, fx.Fixture.ID)
	switch {
	case errors.Is(err, ErrBudgetExhausted):
		return nil, err
	case err != nil:
		c.logger.Warn().Err(err).Int("fixture_id", fx.Fixture.ID).Msg("odds unavailable")
	default:
		snap.Odds = odds
	}

	return snap, nil
}

func (c *Client) teamForm(ctx context.Context, teamID int) (models.TeamStatInput, *models.TeamAverage, error) {
	last := historyGames
	if c.cfg.LastGames > last {
		last = c.cfg.LastGames
	}

	history, err := c.TeamHistory(ctx, teamID, last)
	if err != nil {
		return models.TeamStatInput{}, nil, err
	}

	form, ht := SummarizeForm(history, teamID, c.cfg.LastGames)
	return form, ht, nil
}

// SummarizeForm builds team statistics from finished fixtures, most recent first.
// Goal averages count the goals teamID scored; over rates and the half-time average
// use match totals. Averages and recent rates cover the first window games; season
// rates cover all of them.
func SummarizeForm(history []Fixture, teamID, window int) (models.TeamStatInput, *models.TeamAverage) {
	n := window
	if n > len(history) {
		n = len(history)
	}

	if n == 0 {
		zero, none := 0.0, 0
		return models.TeamStatInput{GoalsPerGame: &zero, SampleSize: &none}, nil
	}

	gpg := averageScored(history[:n], teamID)
	overLow, overHigh := overRates(history)
	recentLow, recentHigh := overRates(history[:n])

	trend := history
	if len(trend) > trendGames {
		trend = trend[:trendGames]
	}
	last5 := averageScored(trend, teamID) * trendGames

	form := models.TeamStatInput{
		GoalsPerGame:       &gpg,
		SampleSize:         &n,
		OverLowRate:        &overLow,
		OverHighRate:       &overHigh,
		RecentOverLowRate:  &recentLow,
		RecentOverHighRate: &recentHigh,
		GoalsLast5:         &last5,
	}

	var htGoals, htGames int
	for _, f := range history[:n] {
		if f.Score.Halftime.Known() {
			htGoals += f.Score.Halftime.Total()
			htGames++
		}
	}
	if htGames == 0 {
		return form, nil
	}
	return form, &models.TeamAverage{
		AvgGoals:   float64(htGoals) / float64(htGames),
		SampleSize: htGames,
	}
}

// SummarizeHeadToHead turns direct meetings into over rates
func SummarizeHeadToHead(meetings []Fixture) models.HeadToHeadRecord {
	finished := make([]Fixture, 0, len(meetings))
	for _, f := range meetings {
		if f.Goals.Known() {
			finished = append(finished, f)
		}
	}
	low, high := overRates(finished)
	return models.HeadToHeadRecord{
		GamesConsidered: len(finished),
		OverLowRate:     low,
		OverHighRate:    high,
	}
}

func averageScored(fixtures []Fixture, teamID int) float64 {
	if len(fixtures) == 0 {
		return 0
	}
	total := 0
	for _, f := range fixtures {
		total += f.GoalsFor(teamID)
	}
	return float64(total) / float64(len(fixtures))
}

// overRates returns the share of fixtures with more than 0.5 and more than 1.5 goals
func overRates(fixtures []Fixture) (low, high float64) {
	if len(fixtures) == 0 {
		return 0, 0
	}
	var lowHits, highHits int
	for _, f := range fixtures {
		total := f.Goals.Total()
		if total >= 1 {
			lowHits++
		}
		if total >= 2 {
			highHits++
		}
	}
	n := float64(len(fixtures))
	return float64(lowHits) / n, float64(highHits) / n
}
