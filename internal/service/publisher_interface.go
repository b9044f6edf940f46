package service

import (
	"context"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Publisher hands prediction batches to a message broker
type Publisher interface {
	Publish(ctx context.Context, batch *models.PredictionBatch) error
	Close() error
}

// MatchSource yields the match history the model is fitted on
type MatchSource interface {
	LoadMatches(ctx context.Context) ([]models.MatchRecord, error)
	Close() error
}
