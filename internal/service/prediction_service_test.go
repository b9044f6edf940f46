package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/match-predictor-service/internal/cache"
	"github.com/cypherlabdev/match-predictor-service/internal/metrics"
	"github.com/cypherlabdev/match-predictor-service/internal/mocks"
	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

// testPredictionServiceSetup is a helper struct to hold test dependencies
type testPredictionServiceSetup struct {
	service       *PredictionService
	mockCache     *mocks.MockCache
	mockPublisher *mocks.MockPublisher
	metrics       *metrics.Metrics
	ctrl          *gomock.Controller
	ctx           context.Context
}

// setupTestPredictionService creates a service with a real predictor and mocked cache and publisher
func setupTestPredictionService(t *testing.T) *testPredictionServiceSetup {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockCache(ctrl)
	mockPublisher := mocks.NewMockPublisher(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	logger := zerolog.Nop()

	predictor := poisson.NewPredictor(models.ModelParams{MaxGoals: poisson.DefaultMaxGoals}, logger)

	return &testPredictionServiceSetup{
		service:       NewPredictionService(predictor, mockCache, mockPublisher, m, logger),
		mockCache:     mockCache,
		mockPublisher: mockPublisher,
		metrics:       m,
		ctrl:          ctrl,
		ctx:           context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testPredictionServiceSetup) cleanup() {
	s.ctrl.Finish()
}

// fitted fits the service on the sample league
func (s *testPredictionServiceSetup) fitted(t *testing.T) *poisson.Model {
	model, err := s.service.Fit(leagueMatches())
	require.NoError(t, err)
	return model
}

func leagueMatches() []models.MatchRecord {
	return []models.MatchRecord{
		{HomeTeam: "Victoria", AwayTeam: "Hudito", HomeGoals: 3, AwayGoals: 1},
		{HomeTeam: "Forcial", AwayTeam: "HDM", HomeGoals: 0, AwayGoals: 2},
		{HomeTeam: "Hudito", AwayTeam: "Forcial", HomeGoals: 1, AwayGoals: 1},
		{HomeTeam: "HDM", AwayTeam: "Victoria", HomeGoals: 2, AwayGoals: 2},
		{HomeTeam: "Victoria", AwayTeam: "Forcial", HomeGoals: 4, AwayGoals: 0},
		{HomeTeam: "Hudito", AwayTeam: "HDM", HomeGoals: 2, AwayGoals: 3},
	}
}

// TestFit_Success tests fitting and the model gauges
func TestFit_Success(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	model := setup.fitted(t)

	current, err := setup.service.Model()
	require.NoError(t, err)
	assert.Same(t, model, current)
	assert.Equal(t, 4.0, testutil.ToFloat64(setup.metrics.TeamsKnown))
	assert.Equal(t, 6.0, testutil.ToFloat64(setup.metrics.MatchesKnown))
}

// TestFit_EmptyInput tests that a failed fit keeps the previous model
func TestFit_EmptyInput(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	previous := setup.fitted(t)

	model, err := setup.service.Fit(nil)

	assert.ErrorIs(t, err, poisson.ErrEmptyInput)
	assert.Nil(t, model)
	current, err := setup.service.Model()
	require.NoError(t, err)
	assert.Same(t, previous, current)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Failures.WithLabelValues("empty_input")))
}

// TestFitFromSource tests fitting from a match source
func TestFitFromSource(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	source := mocks.NewMockMatchSource(setup.ctrl)
	source.EXPECT().LoadMatches(setup.ctx).Return(leagueMatches(), nil)

	model, err := setup.service.FitFromSource(setup.ctx, source)

	require.NoError(t, err)
	assert.Equal(t, 6, model.MatchCount)
}

// TestFitFromSource_LoadFailure tests a source that cannot be read
func TestFitFromSource_LoadFailure(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	loadErr := errors.New("input not found")
	source := mocks.NewMockMatchSource(setup.ctrl)
	source.EXPECT().LoadMatches(setup.ctx).Return(nil, loadErr)

	model, err := setup.service.FitFromSource(setup.ctx, source)

	assert.ErrorIs(t, err, loadErr)
	assert.Nil(t, model)
	_, err = setup.service.Model()
	assert.ErrorIs(t, err, ErrModelNotReady)
}

// TestFit_PredictorFailure tests error propagation from the predictor
func TestFit_PredictorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	predictor := mocks.NewMockPredictor(ctrl)
	predictor.EXPECT().Fit(gomock.Any()).Return(nil, poisson.ErrDivideByZero)

	svc := NewPredictionService(predictor, cache.NopCache{}, mocks.NewMockPublisher(ctrl), metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	_, err := svc.Fit(leagueMatches())

	assert.ErrorIs(t, err, poisson.ErrDivideByZero)
}

// TestPredict_NotReady tests predicting before any fit
func TestPredict_NotReady(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	_, err := setup.service.Predict(setup.ctx, models.Fixture{HomeTeam: "Victoria", AwayTeam: "HDM"})

	assert.ErrorIs(t, err, ErrModelNotReady)
}

// TestPredict_CacheHit tests serving a cached prediction
func TestPredict_CacheHit(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	model := setup.fitted(t)
	fixture := models.Fixture{HomeTeam: "Victoria", AwayTeam: "HDM"}
	cached := &models.Prediction{ModelID: model.ID, Fixture: fixture}

	setup.mockCache.EXPECT().Get(setup.ctx, model.ID, fixture).Return(cached, nil)

	prediction, err := setup.service.Predict(setup.ctx, fixture)

	require.NoError(t, err)
	assert.Same(t, cached, prediction)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.CacheHits))
}

// TestPredict_CacheMiss tests predicting and caching on a miss
func TestPredict_CacheMiss(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	model := setup.fitted(t)
	fixture := models.Fixture{HomeTeam: "Victoria", AwayTeam: "HDM"}

	setup.mockCache.EXPECT().Get(setup.ctx, model.ID, fixture).Return(nil, cache.ErrNotFound)
	setup.mockCache.EXPECT().Set(setup.ctx, gomock.Any()).Return(nil)

	prediction, err := setup.service.Predict(setup.ctx, fixture)

	require.NoError(t, err)
	assert.Equal(t, model.ID, prediction.ModelID)
	assert.Equal(t, fixture, prediction.Fixture)
	assert.Greater(t, prediction.ExpectedGoals.LambdaHome, 0.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Predictions.WithLabelValues(string(prediction.Outcome))))
}

// TestPredict_CacheErrors tests that cache failures never fail a prediction
func TestPredict_CacheErrors(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)
	fixture := models.Fixture{HomeTeam: "Hudito", AwayTeam: "Victoria"}

	setup.mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), fixture).Return(nil, errors.New("connection refused"))
	setup.mockCache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	prediction, err := setup.service.Predict(setup.ctx, fixture)

	require.NoError(t, err)
	assert.NotNil(t, prediction)
}

// TestPredict_UnknownTeam tests an unknown team is not cached
func TestPredict_UnknownTeam(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)
	fixture := models.Fixture{HomeTeam: "Victoria", AwayTeam: "Ajax"}

	setup.mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), fixture).Return(nil, cache.ErrNotFound)

	prediction, err := setup.service.Predict(setup.ctx, fixture)

	assert.ErrorIs(t, err, poisson.ErrUnknownTeam)
	assert.Nil(t, prediction)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Failures.WithLabelValues("unknown_team")))
}

// TestPredictBatch_Success tests caching and publishing a batch
func TestPredictBatch_Success(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	model := setup.fitted(t)
	fixtures := []models.Fixture{
		{HomeTeam: "Victoria", AwayTeam: "HDM"},
		{HomeTeam: "Forcial", AwayTeam: "Hudito"},
	}

	var published *models.PredictionBatch
	setup.mockCache.EXPECT().SetBatch(setup.ctx, gomock.Len(2)).Return(nil)
	setup.mockPublisher.EXPECT().Publish(setup.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *models.PredictionBatch) error {
			published = batch
			return nil
		})

	batch, err := setup.service.PredictBatch(setup.ctx, fixtures)

	require.NoError(t, err)
	require.Len(t, batch.Predictions, 2)
	assert.Same(t, batch, published)
	assert.Equal(t, model.ID, batch.ModelID)
	assert.Equal(t, batch.Predictions[0].RunID, batch.RunID)
	assert.Equal(t, batch.RunID, batch.Predictions[1].RunID)
	assert.Equal(t, fixtures[0], batch.Predictions[0].Fixture)
	assert.Equal(t, fixtures[1], batch.Predictions[1].Fixture)
}

// TestPredictBatch_UnknownTeams tests that nothing is cached or published on validation failure
func TestPredictBatch_UnknownTeams(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)

	batch, err := setup.service.PredictBatch(setup.ctx, []models.Fixture{
		{HomeTeam: "Victoria", AwayTeam: "HDM"},
		{HomeTeam: "Zwaluwen", AwayTeam: "Ajax"},
	})

	assert.Nil(t, batch)
	var unknown *poisson.UnknownTeamError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"Ajax", "Zwaluwen"}, unknown.Teams)
}

// TestPredictBatch_Empty tests an empty fixture list
func TestPredictBatch_Empty(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)

	batch, err := setup.service.PredictBatch(setup.ctx, nil)

	require.NoError(t, err)
	assert.Empty(t, batch.Predictions)
}

// TestPredictBatch_PublishFailure tests that publish errors are only counted
func TestPredictBatch_PublishFailure(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)

	setup.mockCache.EXPECT().SetBatch(gomock.Any(), gomock.Any()).Return(errors.New("pipeline failed"))
	setup.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	batch, err := setup.service.PredictBatch(setup.ctx, []models.Fixture{{HomeTeam: "Victoria", AwayTeam: "HDM"}})

	require.NoError(t, err)
	assert.Len(t, batch.Predictions, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(setup.metrics.Failures.WithLabelValues("publish")))
}

// TestPredictRemaining tests predicting every unplayed fixture
func TestPredictRemaining(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)

	setup.mockCache.EXPECT().SetBatch(gomock.Any(), gomock.Len(6)).Return(nil)
	setup.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	batch, err := setup.service.PredictRemaining(setup.ctx)

	require.NoError(t, err)
	require.Len(t, batch.Predictions, 6)
	assert.Equal(t, models.Fixture{HomeTeam: "Victoria", AwayTeam: "HDM"}, batch.Predictions[0].Fixture)
}

// TestRemainingFixtures_NotReady tests listing fixtures before any fit
func TestRemainingFixtures_NotReady(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	fixtures, err := setup.service.RemainingFixtures()

	assert.ErrorIs(t, err, ErrModelNotReady)
	assert.Nil(t, fixtures)
}

// TestCachedPredictions tests listing cached predictions of the current model
func TestCachedPredictions(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	model := setup.fitted(t)
	cached := []*models.Prediction{{ModelID: model.ID}}

	setup.mockCache.EXPECT().GetByModel(setup.ctx, model.ID).Return(cached, nil)

	predictions, err := setup.service.CachedPredictions(setup.ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, predictions)
}

// TestCachedPredictions_Error tests cache failures when listing
func TestCachedPredictions_Error(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	setup.fitted(t)
	setup.mockCache.EXPECT().GetByModel(gomock.Any(), gomock.Any()).Return(nil, errors.New("scan failed"))

	_, err := setup.service.CachedPredictions(setup.ctx)

	assert.Error(t, err)
}

// TestReady tests the readiness check
func TestReady(t *testing.T) {
	setup := setupTestPredictionService(t)
	defer setup.cleanup()

	assert.ErrorIs(t, setup.service.Ready(setup.ctx), ErrModelNotReady)

	setup.fitted(t)
	setup.mockCache.EXPECT().Ping(setup.ctx).Return(nil)
	assert.NoError(t, setup.service.Ready(setup.ctx))

	setup.mockCache.EXPECT().Ping(setup.ctx).Return(errors.New("connection refused"))
	assert.Error(t, setup.service.Ready(setup.ctx))
}

// TestFailureReason tests metric labels for errors
func TestFailureReason(t *testing.T) {
	assert.Equal(t, "unknown_team", failureReason(&poisson.UnknownTeamError{Teams: []string{"X"}}))
	assert.Equal(t, "empty_input", failureReason(poisson.ErrEmptyInput))
	assert.Equal(t, "divide_by_zero", failureReason(poisson.ErrDivideByZero))
	assert.Equal(t, "invalid_params", failureReason(poisson.ErrInvalidParams))
	assert.Equal(t, "other", failureReason(errors.New("boom")))
}

// TestPredict_SharedCacheSeparatesMaxGoals tests that services with different matrix
// bounds sharing one Redis never serve each other's predictions
func TestPredict_SharedCacheSeparatesMaxGoals(t *testing.T) {
	mr := miniredis.RunT(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	newService := func(maxGoals int) *PredictionService {
		redisCache := cache.NewRedisCache(cache.RedisCacheConfig{Addr: mr.Addr(), TTL: time.Minute}, logger)
		t.Cleanup(func() { redisCache.Close() })
		predictor := poisson.NewPredictor(models.ModelParams{MaxGoals: maxGoals}, logger)
		return NewPredictionService(predictor, redisCache, mocks.NewMockPublisher(ctrl), metrics.New(prometheus.NewRegistry()), logger)
	}

	narrow := newService(0)
	wide := newService(poisson.DefaultMaxGoals)
	_, err := narrow.Fit(leagueMatches())
	require.NoError(t, err)
	_, err = wide.Fit(leagueMatches())
	require.NoError(t, err)

	fixture := models.Fixture{HomeTeam: "Victoria", AwayTeam: "HDM"}
	first, err := narrow.Predict(ctx, fixture)
	require.NoError(t, err)
	second, err := wide.Predict(ctx, fixture)
	require.NoError(t, err)

	direct := poisson.NewPredictor(models.ModelParams{MaxGoals: poisson.DefaultMaxGoals}, logger)
	model, err := direct.Fit(leagueMatches())
	require.NoError(t, err)
	expected, err := direct.Predict(model, fixture)
	require.NoError(t, err)

	assert.NotEqual(t, first.ModelID, second.ModelID)
	assert.Equal(t, models.Score{}, first.Summary.MostLikelyScore)
	assert.Equal(t, expected.Summary.MostLikelyScore, second.Summary.MostLikelyScore)
	assert.InDelta(t, expected.Summary.DrawProb, second.Summary.DrawProb, 1e-12)
	assert.InDelta(t, expected.Summary.HomeWinProb, second.Summary.HomeWinProb, 1e-12)
	assert.Len(t, mr.Keys(), 2)
}
