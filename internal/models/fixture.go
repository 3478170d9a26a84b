package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingField is returned when a snapshot lacks a field the model cannot default
var ErrMissingField = errors.New("missing required field")

// TeamDefaults holds the values used for optional team statistics the provider did not supply
type TeamDefaults struct {
	OverLowRate     float64 `json:"over_low_rate"`
	OverHighRate    float64 `json:"over_high_rate"`
	OffensiveRating float64 `json:"offensive_rating"`
	TablePosition   int     `json:"table_position"`
	GamesPlayedAvg  float64 `json:"games_played_avg"`
}

// DefaultTeamDefaults returns the neutral team profile
func DefaultTeamDefaults() TeamDefaults {
	return TeamDefaults{
		OverLowRate:     0.70,
		OverHighRate:    0.50,
		OffensiveRating: 50,
		TablePosition:   10,
		GamesPlayedAvg:  10,
	}
}

// TeamStatInput is a team record as received from a stats provider; nil means absent
type TeamStatInput struct {
	GoalsPerGame       *float64 `json:"goals_per_game"`
	SampleSize         *int     `json:"sample_size"`
	OverLowRate        *float64 `json:"over_low_rate,omitempty"`
	OverHighRate       *float64 `json:"over_high_rate,omitempty"`
	RecentOverLowRate  *float64 `json:"recent_over_low_rate,omitempty"`
	RecentOverHighRate *float64 `json:"recent_over_high_rate,omitempty"`
	OffensiveRating    *float64 `json:"offensive_rating,omitempty"`
	GoalsLast5         *float64 `json:"goals_last_5,omitempty"`
	TablePosition      *int     `json:"table_position,omitempty"`
}

// TeamStatSnapshot is a fully resolved team record consumed by the engine
type TeamStatSnapshot struct {
	GoalsPerGame       float64 `json:"goals_per_game"`
	OverLowRate        float64 `json:"over_low_rate"`
	OverHighRate       float64 `json:"over_high_rate"`
	RecentOverLowRate  float64 `json:"recent_over_low_rate"`
	RecentOverHighRate float64 `json:"recent_over_high_rate"`
	OffensiveRating    float64 `json:"offensive_rating"` // 0-100
	GoalsLast5         float64 `json:"goals_last_5"`
	SampleSize         int     `json:"sample_size"`
	TablePosition      int     `json:"table_position"`
}

// Resolve validates the input and fills absent optional fields from defaults.
// Recent rates fall back to the season rates, and goals over the last five games
// to five times the season scoring rate.
func (in TeamStatInput) Resolve(d TeamDefaults) (TeamStatSnapshot, error) {
	if in.GoalsPerGame == nil {
		return TeamStatSnapshot{}, fmt.Errorf("goals_per_game: %w", ErrMissingField)
	}
	if in.SampleSize == nil {
		return TeamStatSnapshot{}, fmt.Errorf("sample_size: %w", ErrMissingField)
	}

	s := TeamStatSnapshot{
		GoalsPerGame:    *in.GoalsPerGame,
		SampleSize:      *in.SampleSize,
		OverLowRate:     floatOr(in.OverLowRate, d.OverLowRate),
		OverHighRate:    floatOr(in.OverHighRate, d.OverHighRate),
		OffensiveRating: floatOr(in.OffensiveRating, d.OffensiveRating),
		TablePosition:   intOr(in.TablePosition, d.TablePosition),
	}
	s.RecentOverLowRate = floatOr(in.RecentOverLowRate, s.OverLowRate)
	s.RecentOverHighRate = floatOr(in.RecentOverHighRate, s.OverHighRate)
	s.GoalsLast5 = floatOr(in.GoalsLast5, 5*s.GoalsPerGame)
	return s, nil
}

// HeadToHeadRecord summarizes recent direct meetings between the two teams
type HeadToHeadRecord struct {
	GamesConsidered int     `json:"games_considered"`
	OverLowRate     float64 `json:"over_low_rate"`
	OverHighRate    float64 `json:"over_high_rate"`
}

// MatchContextInput carries optional contextual facts about a fixture
type MatchContextInput struct {
	GamesPlayedAvg *float64 `json:"games_played_avg,omitempty"`
	HomePosition   *int     `json:"home_position,omitempty"`
	AwayPosition   *int     `json:"away_position,omitempty"`
	IsDerby        bool     `json:"is_derby"`
}

// MatchContext holds resolved contextual facts about a fixture
type MatchContext struct {
	GamesPlayedAvg float64 `json:"games_played_avg"`
	HomePosition   int     `json:"home_position"`
	AwayPosition   int     `json:"away_position"`
	IsDerby        bool    `json:"is_derby"`
}

// Resolve fills absent context from the team snapshots and defaults
func (in MatchContextInput) Resolve(home, away TeamStatSnapshot, d TeamDefaults) MatchContext {
	return MatchContext{
		GamesPlayedAvg: floatOr(in.GamesPlayedAvg, d.GamesPlayedAvg),
		HomePosition:   intOr(in.HomePosition, home.TablePosition),
		AwayPosition:   intOr(in.AwayPosition, away.TablePosition),
		IsDerby:        in.IsDerby,
	}
}

// TeamAverage is an (average goals, sample size) pair used by the highlight criteria
type TeamAverage struct {
	AvgGoals   float64 `json:"avg_goals"`
	SampleSize int     `json:"sample_size"`
}

// MarketOdds holds bookmaker prices for the goal markets; zero means not offered
type MarketOdds struct {
	OverLow  float64 `json:"over_low"`
	OverHigh float64 `json:"over_high"`
}

// FixtureSnapshot is everything known about one fixture at evaluation time
type FixtureSnapshot struct {
	FixtureID     string            `json:"fixture_id"`
	LeagueCode    string            `json:"league_code"`
	HomeTeam      string            `json:"home_team"`
	AwayTeam      string            `json:"away_team"`
	Kickoff       time.Time         `json:"kickoff"`
	Home          TeamStatInput     `json:"home"`
	Away          TeamStatInput     `json:"away"`
	HomeHT        *TeamAverage      `json:"home_ht,omitempty"`
	AwayHT        *TeamAverage      `json:"away_ht,omitempty"`
	HeadToHead    *HeadToHeadRecord `json:"h2h,omitempty"`
	Context       MatchContextInput `json:"context"`
	IsHTScoreless bool              `json:"is_ht_scoreless"`
	Odds          MarketOdds        `json:"odds"`
}

// Validate checks the identifying fields of a snapshot
func (f *FixtureSnapshot) Validate() error {
	if f.FixtureID == "" {
		return fmt.Errorf("fixture_id: %w", ErrMissingField)
	}
	if f.HomeTeam == "" || f.AwayTeam == "" {
		return fmt.Errorf("home_team/away_team: %w", ErrMissingField)
	}
	return nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
