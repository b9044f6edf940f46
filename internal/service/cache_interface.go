package service

import (
	"context"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Cache is an interface that abstracts prediction cache operations
// This allows for easier testing and mocking
type Cache interface {
	Set(ctx context.Context, prediction *models.Prediction) error
	Get(ctx context.Context, modelID string, fixture models.Fixture) (*models.Prediction, error)
	SetBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByModel(ctx context.Context, modelID string) ([]*models.Prediction, error)
	Ping(ctx context.Context) error
	Close() error
}
