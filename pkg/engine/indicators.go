package engine

import (
	"math"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// poissonIndicator treats the mean scoring rate of both teams as λ and returns
// P(X>=1) and P(X>=2)
func poissonIndicator(home, away models.TeamStatSnapshot) models.ProbabilityPair {
	lambda := math.Max(0, (home.GoalsPerGame+away.GoalsPerGame)/2)
	e := math.Exp(-lambda)
	return models.ProbabilityPair{
		Low:  1 - e,
		High: 1 - e*(1+lambda),
	}
}

func historicalRateIndicator(home, away models.TeamStatSnapshot) models.ProbabilityPair {
	return models.ProbabilityPair{
		Low:  (home.OverLowRate + away.OverLowRate) / 2,
		High: (home.OverHighRate + away.OverHighRate) / 2,
	}
}

func recentTrendIndicator(home, away models.TeamStatSnapshot) models.ProbabilityPair {
	return models.ProbabilityPair{
		Low:  (home.RecentOverLowRate + away.RecentOverLowRate) / 2,
		High: (home.RecentOverHighRate + away.RecentOverHighRate) / 2,
	}
}

// headToHeadIndicator falls back to the prior when too few meetings exist
func headToHeadIndicator(h2h models.HeadToHeadRecord, m models.ModelParams) models.ProbabilityPair {
	if h2h.GamesConsidered < m.MinHeadToHeadGames {
		return m.HeadToHeadPrior
	}
	return models.ProbabilityPair{Low: h2h.OverLowRate, High: h2h.OverHighRate}
}

func offensiveStrengthIndicator(home, away models.TeamStatSnapshot, m models.ModelParams) models.ProbabilityPair {
	return saturate(m.OffensiveStrength, home.GoalsPerGame+away.GoalsPerGame)
}

// offensiveTrendIndicator uses scoring over the last five games of each team
func offensiveTrendIndicator(home, away models.TeamStatSnapshot, m models.ModelParams) models.ProbabilityPair {
	return saturate(m.OffensiveTrend, (home.GoalsLast5+away.GoalsLast5)/5)
}

func seasonPhaseIndicator(ctx models.MatchContext, m models.ModelParams) models.ProbabilityPair {
	switch {
	case ctx.GamesPlayedAvg < m.EarlySeasonBefore:
		return m.EarlySeason
	case ctx.GamesPlayedAvg < m.MidSeasonBefore:
		return m.MidSeason
	default:
		return m.LateSeason
	}
}

// motivationIndicator scores title races and relegation fights above mid-table
func motivationIndicator(ctx models.MatchContext, m models.ModelParams) models.ProbabilityPair {
	avg := float64(ctx.HomePosition+ctx.AwayPosition) / 2
	if avg <= m.TopTableMax || avg >= m.BottomTableMin {
		return m.ContestedTable
	}
	return m.MidTable
}

func matchImportanceIndicator(ctx models.MatchContext, m models.ModelParams) models.ProbabilityPair {
	gap := ctx.HomePosition - ctx.AwayPosition
	if gap < 0 {
		gap = -gap
	}
	if ctx.IsDerby || gap <= m.CloseRankGap {
		return m.ImportantMatch
	}
	return m.RoutineMatch
}

func saturate(c models.SaturatingCurve, x float64) models.ProbabilityPair {
	return models.ProbabilityPair{
		Low:  math.Min(c.Cap.Low, c.Base.Low+c.Slope*x),
		High: math.Min(c.Cap.High, c.Base.High+c.Slope*x),
	}
}

func clampPair(p models.ProbabilityPair) models.ProbabilityPair {
	return models.ProbabilityPair{Low: clamp(p.Low, 0, 1), High: clamp(p.High, 0, 1)}
}
