package service

import (
	"context"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/provider/apifootball"
)

// FixtureEvaluator scores batches of fixture snapshots
type FixtureEvaluator interface {
	EvaluateBatch(ctx context.Context, snapshots []models.FixtureSnapshot) ([]*models.Evaluation, error)
}

// StatsProvider lists fixtures and builds their snapshots
type StatsProvider interface {
	ResetBudget()
	RequestsUsed() int
	FixturesToday(ctx context.Context, league models.League) ([]apifootball.Fixture, error)
	Snapshot(ctx context.Context, league models.League, fx apifootball.Fixture) (*models.FixtureSnapshot, error)
}

// Notifier delivers chat messages
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Publisher forwards evaluations downstream
type Publisher interface {
	Publish(ctx context.Context, evals []*models.Evaluation) error
}
