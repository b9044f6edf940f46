package cache

import (
	"context"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// NopCache stands in for Redis when caching is disabled. Every lookup misses.
type NopCache struct{}

func (NopCache) Set(context.Context, *models.Prediction) error { return nil }

func (NopCache) Get(context.Context, string, models.Fixture) (*models.Prediction, error) {
	return nil, ErrNotFound
}

func (NopCache) SetBatch(context.Context, []*models.Prediction) error { return nil }

func (NopCache) GetByModel(context.Context, string) ([]*models.Prediction, error) {
	return []*models.Prediction{}, nil
}

func (NopCache) Ping(context.Context) error { return nil }

func (NopCache) Close() error { return nil }
