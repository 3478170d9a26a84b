package service

import (
	"context"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// Cache is an interface that abstracts evaluation storage and notification dedup
// This allows for easier testing and mocking
type Cache interface {
	Set(ctx context.Context, eval *models.Evaluation) error
	Get(ctx context.Context, fixtureID string) (*models.Evaluation, error)
	SetBatch(ctx context.Context, evals []*models.Evaluation) error
	GetByLeague(ctx context.Context, league string) ([]*models.Evaluation, error)
	MarkNotified(ctx context.Context, fixtureID string, market models.Market) (bool, error)
	ClearNotified(ctx context.Context, fixtureID string, market models.Market) error
}
