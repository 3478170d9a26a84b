package apifootball

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// envelope is the common wrapper of every API response
type envelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

// apiErrors returns the provider error text, or "" when the errors field is empty.
// The API sends either [] or an object keyed by error type.
func (e envelope) apiErrors() string {
	raw := strings.TrimSpace(string(e.Errors))
	switch raw {
	case "", "null", "[]", "{}":
		return ""
	}
	return raw
}

// Fixture is one match as returned by /fixtures and /fixtures/headtohead
type Fixture struct {
	Fixture FixtureInfo `json:"fixture"`
	League  LeagueInfo  `json:"league"`
	Teams   Teams       `json:"teams"`
	Goals   Score       `json:"goals"`
	Score   ScoreDetail `json:"score"`
}

// FixtureInfo holds the match identity and status
type FixtureInfo struct {
	ID     int       `json:"id"`
	Date   time.Time `json:"date"`
	Status Status    `json:"status"`
}

// Status is the match status, e.g. NS, TBD, 1H, HT, FT
type Status struct {
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

// LeagueInfo identifies the competition of a fixture
type LeagueInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Round  string `json:"round"`
}

// Teams holds both sides of a fixture
type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

// Team identifies one side
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Score is a home/away goal count; nil while unknown
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// ScoreDetail holds partial scores
type ScoreDetail struct {
	Halftime Score `json:"halftime"`
	Fulltime Score `json:"fulltime"`
}

// Total returns the goal total, treating unknown sides as zero
func (s Score) Total() int {
	total := 0
	if s.Home != nil {
		total += *s.Home
	}
	if s.Away != nil {
		total += *s.Away
	}
	return total
}

// Known reports whether both sides are set
func (s Score) Known() bool {
	return s.Home != nil && s.Away != nil
}

// GoalsFor returns the goals teamID scored in the fixture, zero when it did not play
func (f Fixture) GoalsFor(teamID int) int {
	var side *int
	switch teamID {
	case f.Teams.Home.ID:
		side = f.Goals.Home
	case f.Teams.Away.ID:
		side = f.Goals.Away
	}
	if side == nil {
		return 0
	}
	return *side
}

// IsUpcoming reports whether the fixture has not started
func (f Fixture) IsUpcoming() bool {
	return f.Fixture.Status.Short == "NS" || f.Fixture.Status.Short == "TBD"
}

// IsHTScoreless reports whether the match is at half-time with no goals
func (f Fixture) IsHTScoreless() bool {
	ht := f.Score.Halftime
	return f.Fixture.Status.Short == "HT" && ht.Known() && *ht.Home == 0 && *ht.Away == 0
}

// RoundNumber parses the matchday from rounds like "Regular Season - 24"
func (f Fixture) RoundNumber() (int, bool) {
	i := strings.LastIndex(f.League.Round, "-")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.League.Round[i+1:]))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// OddsEntry is one element of the /odds response
type OddsEntry struct {
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Bookmaker holds the bets a bookmaker offers
type Bookmaker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

// Bet is one market with its selections
type Bet struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Values []BetValue `json:"values"`
}

// BetValue is a selection price; Odd is a decimal string such as "1.50"
type BetValue struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}
