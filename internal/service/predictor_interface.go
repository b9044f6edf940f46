package service

import (
	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

// Predictor is an interface that abstracts model fitting and fixture prediction
type Predictor interface {
	Fit(matches []models.MatchRecord) (*poisson.Model, error)
	Predict(model *poisson.Model, fixture models.Fixture) (*models.Prediction, error)
	PredictBatch(model *poisson.Model, fixtures []models.Fixture) ([]*models.Prediction, error)
}
