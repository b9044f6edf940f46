package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/cache"
	"github.com/cypherlabdev/match-predictor-service/internal/metrics"
	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

// ErrModelNotReady is returned when no model has been fitted yet
var ErrModelNotReady = errors.New("model not fitted")

// PredictionService orchestrates fitting and prediction with caching and publishing
type PredictionService struct {
	predictor Predictor
	cache     Cache
	publisher Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu    sync.RWMutex
	model *poisson.Model
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	predictor Predictor,
	cache Cache,
	publisher Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PredictionService {
	return &PredictionService{
		predictor: predictor,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("component", "prediction_service").Logger(),
	}
}

// FitFromSource loads the match history from source and fits a new model
func (s *PredictionService) FitFromSource(ctx context.Context, source MatchSource) (*poisson.Model, error) {
	matches, err := source.LoadMatches(ctx)
	if err != nil {
		s.metrics.Failures.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	return s.Fit(matches)
}

// Fit fits a model on matches and makes it the current one.
// The previous model stays current when fitting fails.
func (s *PredictionService) Fit(matches []models.MatchRecord) (*poisson.Model, error) {
	start := time.Now()
	model, err := s.predictor.Fit(matches)
	if err != nil {
		s.metrics.Failures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	s.metrics.FitDuration.Observe(time.Since(start).Seconds())
	s.metrics.TeamsKnown.Set(float64(len(model.Teams)))
	s.metrics.MatchesKnown.Set(float64(model.MatchCount))

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	return model, nil
}

// Model returns the current model
func (s *PredictionService) Model() (*poisson.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.model == nil {
		return nil, ErrModelNotReady
	}
	return s.model, nil
}

// Predict forecasts one fixture with cache-first strategy
func (s *PredictionService) Predict(ctx context.Context, fixture models.Fixture) (*models.Prediction, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, model.ID, fixture)
	if err == nil && cached != nil {
		s.metrics.CacheHits.Inc()
		s.logger.Debug().
			Str("fixture", fixture.Label()).
			Str("model_id", model.ID).
			Msg("cache hit for prediction")
		return cached, nil
	}
	s.metrics.CacheMisses.Inc()

	// Don't fail on cache errors
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn().
			Err(err).
			Str("fixture", fixture.Label()).
			Msg("cache error, predicting without cache")
	}

	prediction, err := s.predictor.Predict(model, fixture)
	if err != nil {
		s.metrics.Failures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	s.metrics.Predictions.WithLabelValues(string(prediction.Outcome)).Inc()

	if err := s.cache.Set(ctx, prediction); err != nil {
		s.logger.Warn().
			Err(err).
			Str("fixture", fixture.Label()).
			Msg("failed to cache prediction")
	}

	return prediction, nil
}

// PredictBatch forecasts every fixture under one run ID, caches the results and
// publishes the batch. Nothing is predicted when any fixture names an unknown team.
func (s *PredictionService) PredictBatch(ctx context.Context, fixtures []models.Fixture) (*models.PredictionBatch, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}

	predictions, err := s.predictor.PredictBatch(model, fixtures)
	if err != nil {
		s.metrics.Failures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	batch := &models.PredictionBatch{
		ModelID:     model.ID,
		Predictions: predictions,
		Timestamp:   time.Now().UTC(),
	}
	if len(predictions) == 0 {
		return batch, nil
	}
	batch.RunID = predictions[0].RunID

	for _, p := range predictions {
		s.metrics.Predictions.WithLabelValues(string(p.Outcome)).Inc()
	}

	if err := s.cache.SetBatch(ctx, predictions); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(predictions)).
			Msg("failed to cache batch of predictions")
	}

	if err := s.publisher.Publish(ctx, batch); err != nil {
		s.metrics.Failures.WithLabelValues("publish").Inc()
		s.logger.Warn().
			Err(err).
			Str("run_id", batch.RunID.String()).
			Msg("failed to publish prediction batch")
	}

	s.logger.Info().
		Str("run_id", batch.RunID.String()).
		Str("model_id", model.ID).
		Int("count", len(predictions)).
		Msg("predicted batch")

	return batch, nil
}

// PredictRemaining forecasts every unplayed fixture of the current model
func (s *PredictionService) PredictRemaining(ctx context.Context) (*models.PredictionBatch, error) {
	fixtures, err := s.RemainingFixtures()
	if err != nil {
		return nil, err
	}
	return s.PredictBatch(ctx, fixtures)
}

// RemainingFixtures lists the unplayed fixtures of the current model
func (s *PredictionService) RemainingFixtures() ([]models.Fixture, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}
	return model.RemainingFixtures(), nil
}

// CachedPredictions returns every cached prediction made by the current model
func (s *PredictionService) CachedPredictions(ctx context.Context) ([]*models.Prediction, error) {
	model, err := s.Model()
	if err != nil {
		return nil, err
	}

	predictions, err := s.cache.GetByModel(ctx, model.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cached predictions: %w", err)
	}

	s.logger.Debug().
		Str("model_id", model.ID).
		Int("count", len(predictions)).
		Msg("retrieved cached predictions")

	return predictions, nil
}

// Ready reports whether a model is loaded and the cache is reachable
func (s *PredictionService) Ready(ctx context.Context) error {
	if _, err := s.Model(); err != nil {
		return err
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache unavailable: %w", err)
	}
	return nil
}

// failureReason maps an error to a metrics label
func failureReason(err error) string {
	switch {
	case errors.Is(err, poisson.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, poisson.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, poisson.ErrDivideByZero):
		return "divide_by_zero"
	case errors.Is(err, poisson.ErrInvalidParams):
		return "invalid_params"
	}
	return "other"
}
