package poisson

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Model is a fitted snapshot of the league, read-only after Fit
type Model struct {
	ID         string // Fingerprint of the match history and the score matrix bound
	Strengths  map[string]models.TeamStrength
	League     models.LeagueContext
	Teams      []string // Order of first appearance
	MatchCount int

	matches []models.MatchRecord
}

// Predictor fits models from match history and forecasts fixtures
type Predictor struct {
	params models.ModelParams
	logger zerolog.Logger
	now    func() time.Time
}

// NewPredictor creates a new predictor
func NewPredictor(params models.ModelParams, logger zerolog.Logger) *Predictor {
	return &Predictor{
		params: params,
		logger: logger.With().Str("component", "predictor").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Params returns the predictor's parameters
func (p *Predictor) Params() models.ModelParams {
	return p.params
}

// Fit derives team strengths and the league context from the match history
func (p *Predictor) Fit(matches []models.MatchRecord) (*Model, error) {
	strengths, leagueAvgGoals, err := EstimateStrengths(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate team strengths: %w", err)
	}

	homeAdvantage, err := EstimateHomeAdvantage(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate home advantage: %w", err)
	}

	history := make([]models.MatchRecord, len(matches))
	copy(history, matches)

	model := &Model{
		ID:        fmt.Sprintf("%s-g%d", fingerprint(history), p.params.MaxGoals),
		Strengths: strengths,
		League: models.LeagueContext{
			LeagueAvgGoals: leagueAvgGoals,
			HomeAdvantage:  homeAdvantage,
		},
		Teams:      Teams(history),
		MatchCount: len(history),
		matches:    history,
	}

	p.logger.Info().
		Str("model_id", model.ID).
		Int("matches", model.MatchCount).
		Int("teams", len(model.Teams)).
		Float64("league_avg_goals", leagueAvgGoals).
		Float64("home_advantage", homeAdvantage).
		Msg("model fitted")

	return model, nil
}

// ValidateFixtures checks every fixture before any prediction is made.
// All missing team names are reported together, sorted.
func (m *Model) ValidateFixtures(fixtures []models.Fixture) error {
	missing := make(map[string]bool)
	for _, f := range fixtures {
		if f.HomeTeam == f.AwayTeam {
			return fmt.Errorf("%w: fixture %q has the same home and away team", ErrInvalidParams, f.Label())
		}
		if _, ok := m.Strengths[f.HomeTeam]; !ok {
			missing[f.HomeTeam] = true
		}
		if _, ok := m.Strengths[f.AwayTeam]; !ok {
			missing[f.AwayTeam] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	teams := make([]string, 0, len(missing))
	for name := range missing {
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return &UnknownTeamError{Teams: teams}
}

// RemainingFixtures returns the unplayed fixtures of the full home-and-away round robin
func (m *Model) RemainingFixtures() []models.Fixture {
	return RemainingFixtures(m.matches, m.Teams)
}

// Predict forecasts a single fixture under a fresh run ID
func (p *Predictor) Predict(model *Model, fixture models.Fixture) (*models.Prediction, error) {
	if err := model.ValidateFixtures([]models.Fixture{fixture}); err != nil {
		return nil, err
	}
	return p.predict(model, fixture, uuid.New())
}

// PredictBatch validates all fixtures, then predicts them in input order.
// Nothing is returned unless every fixture succeeds.
func (p *Predictor) PredictBatch(model *Model, fixtures []models.Fixture) ([]*models.Prediction, error) {
	if err := model.ValidateFixtures(fixtures); err != nil {
		return nil, err
	}

	runID := uuid.New()
	predictions := make([]*models.Prediction, 0, len(fixtures))
	for _, f := range fixtures {
		prediction, err := p.predict(model, f, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to predict %s: %w", f.Label(), err)
		}
		predictions = append(predictions, prediction)
	}

	p.logger.Info().
		Str("run_id", runID.String()).
		Str("model_id", model.ID).
		Int("fixture_count", len(fixtures)).
		Msg("batch prediction complete")

	return predictions, nil
}

func (p *Predictor) predict(model *Model, fixture models.Fixture, runID uuid.UUID) (*models.Prediction, error) {
	expected, err := ExpectedGoalsFor(
		model.Strengths,
		model.League.LeagueAvgGoals,
		model.League.HomeAdvantage,
		fixture.HomeTeam,
		fixture.AwayTeam,
	)
	if err != nil {
		return nil, err
	}

	summary, err := Distribution(expected.LambdaHome, expected.LambdaAway, p.params.MaxGoals)
	if err != nil {
		return nil, err
	}

	outcome, outcomeProb := summary.Outcome()

	p.logger.Debug().
		Str("fixture", fixture.Label()).
		Float64("lambda_home", expected.LambdaHome).
		Float64("lambda_away", expected.LambdaAway).
		Str("outcome", string(outcome)).
		Msg("predicted fixture")

	return &models.Prediction{
		ID:            uuid.New(),
		RunID:         runID,
		ModelID:       model.ID,
		Fixture:       fixture,
		ExpectedGoals: expected,
		Summary:       summary,
		Outcome:       outcome,
		OutcomeProb:   outcomeProb,
		PredictedAt:   p.now(),
	}, nil
}

// fingerprint hashes the match history so identical inputs share a model ID
func fingerprint(matches []models.MatchRecord) string {
	h := sha256.New()
	for _, m := range matches {
		h.Write([]byte(m.HomeTeam))
		h.Write([]byte{0})
		h.Write([]byte(m.AwayTeam))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(m.HomeGoals)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(m.AwayGoals)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
