package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the predicted result of a fixture from the home side's view
type Outcome string

const (
	OutcomeHomeWin Outcome = "home_win"
	OutcomeDraw    Outcome = "draw"
	OutcomeAwayWin Outcome = "away_win"
)

// Label returns the human-readable outcome name
func (o Outcome) Label() string {
	switch o {
	case OutcomeHomeWin:
		return "Home Win"
	case OutcomeDraw:
		return "Draw"
	case OutcomeAwayWin:
		return "Away Win"
	}
	return string(o)
}

// ExpectedGoals holds the Poisson rates for one fixture
type ExpectedGoals struct {
	LambdaHome float64 `json:"lambda_home"`
	LambdaAway float64 `json:"lambda_away"`
}

// Score is a scoreline
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// OutcomeSummary condenses the joint scoreline distribution of one fixture
type OutcomeSummary struct {
	HomeWinProb         float64 `json:"home_win_prob"`
	DrawProb            float64 `json:"draw_prob"`
	AwayWinProb         float64 `json:"away_win_prob"`
	MostLikelyScore     Score   `json:"most_likely_score"`
	MostLikelyScoreProb float64 `json:"most_likely_score_prob"`
}

// Outcome returns the most probable result and its probability.
// Ties go to the home win, then the draw.
func (s OutcomeSummary) Outcome() (Outcome, float64) {
	outcome, prob := OutcomeHomeWin, s.HomeWinProb
	if s.DrawProb > prob {
		outcome, prob = OutcomeDraw, s.DrawProb
	}
	if s.AwayWinProb > prob {
		outcome, prob = OutcomeAwayWin, s.AwayWinProb
	}
	return outcome, prob
}

// Prediction is the forecast for one fixture
type Prediction struct {
	ID            uuid.UUID      `json:"id"`
	RunID         uuid.UUID      `json:"run_id"`   // Shared by every prediction of one batch
	ModelID       string         `json:"model_id"` // History fingerprint plus matrix bound
	Fixture       Fixture        `json:"fixture"`
	ExpectedGoals ExpectedGoals  `json:"expected_goals"`
	Summary       OutcomeSummary `json:"summary"`
	Outcome       Outcome        `json:"outcome"`
	OutcomeProb   float64        `json:"outcome_prob"`
	PredictedAt   time.Time      `json:"predicted_at"`
}

// PredictionBatch is the message published for one prediction run
type PredictionBatch struct {
	RunID       uuid.UUID     `json:"run_id"`
	ModelID     string        `json:"model_id"`
	Predictions []*Prediction `json:"predictions"`
	Timestamp   time.Time     `json:"timestamp"`
}
