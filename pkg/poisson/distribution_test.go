package poisson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// TestPoissonPMF tests the probability mass function
func TestPoissonPMF(t *testing.T) {
	assert.Equal(t, 1.0, PoissonPMF(0, 0))
	assert.Equal(t, 0.0, PoissonPMF(1, 0))
	assert.Equal(t, 0.0, PoissonPMF(-1, 2))
	assert.InDelta(t, math.Exp(-1.5), PoissonPMF(0, 1.5), 1e-12)
	assert.InDelta(t, 0.25102143, PoissonPMF(2, 1.5), 1e-8)

	total := 0.0
	for k := 0; k <= 60; k++ {
		total += PoissonPMF(k, 3.0)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

// TestDistribution_DrawMatchesTrace tests the draw probability against a direct PMF computation
func TestDistribution_DrawMatchesTrace(t *testing.T) {
	summary, err := Distribution(1.5, 1.0, 5)
	require.NoError(t, err)

	trace := 0.0
	for k := 0; k <= 5; k++ {
		trace += PoissonPMF(k, 1.5) * PoissonPMF(k, 1.0)
	}

	assert.InDelta(t, trace, summary.DrawProb, 1e-12)
	assert.InDelta(t, 0.2598, summary.DrawProb, 1e-3)
}

// TestDistribution_SumAtMostOne tests truncation bias and convergence
func TestDistribution_SumAtMostOne(t *testing.T) {
	small, err := Distribution(1.5, 1.0, 5)
	require.NoError(t, err)
	smallSum := small.HomeWinProb + small.DrawProb + small.AwayWinProb
	assert.Less(t, smallSum, 1.0)

	large, err := Distribution(1.5, 1.0, 30)
	require.NoError(t, err)
	largeSum := large.HomeWinProb + large.DrawProb + large.AwayWinProb
	assert.LessOrEqual(t, largeSum, 1.0+1e-12)
	assert.InDelta(t, 1.0, largeSum, 1e-9)
	assert.Greater(t, largeSum, smallSum)
}

// TestDistribution_Symmetric tests that equal rates give equal win probabilities
func TestDistribution_Symmetric(t *testing.T) {
	for _, lambda := range []float64{0.3, 1.0, 1.37, 2.8} {
		summary, err := Distribution(lambda, lambda, 10)
		require.NoError(t, err)
		assert.InDelta(t, summary.HomeWinProb, summary.AwayWinProb, 1e-12, "lambda %v", lambda)
	}
}

// TestDistribution_MostLikelyScoreDominates tests argmax bounds and dominance
func TestDistribution_MostLikelyScoreDominates(t *testing.T) {
	const maxGoals = 8
	summary, err := Distribution(2.2, 0.9, maxGoals)
	require.NoError(t, err)

	score := summary.MostLikelyScore
	assert.GreaterOrEqual(t, score.Home, 0)
	assert.LessOrEqual(t, score.Home, maxGoals)
	assert.GreaterOrEqual(t, score.Away, 0)
	assert.LessOrEqual(t, score.Away, maxGoals)

	matrix, err := NewScoreMatrix(2.2, 0.9, maxGoals)
	require.NoError(t, err)
	for i := 0; i <= maxGoals; i++ {
		for j := 0; j <= maxGoals; j++ {
			assert.GreaterOrEqual(t, summary.MostLikelyScoreProb, matrix.Cells[i][j])
		}
	}
	assert.Equal(t, models.Score{Home: 2, Away: 0}, score)
}

// TestScoreMatrix_MostLikelyTieBreak tests that ties resolve row-major to the first cell
func TestScoreMatrix_MostLikelyTieBreak(t *testing.T) {
	matrix := &ScoreMatrix{
		MaxGoals: 2,
		Cells: [][]float64{
			{0.05, 0.10, 0.20},
			{0.20, 0.05, 0.05},
			{0.20, 0.05, 0.10},
		},
	}

	score, prob := matrix.MostLikely()

	assert.Equal(t, models.Score{Home: 0, Away: 2}, score)
	assert.Equal(t, 0.20, prob)
}

// TestDistribution_ZeroRates tests that two goalless sides predict 0-0 with certainty
func TestDistribution_ZeroRates(t *testing.T) {
	summary, err := Distribution(0, 0, 10)

	require.NoError(t, err)
	assert.Equal(t, 1.0, summary.DrawProb)
	assert.Equal(t, 0.0, summary.HomeWinProb)
	assert.Equal(t, 0.0, summary.AwayWinProb)
	assert.Equal(t, models.Score{}, summary.MostLikelyScore)
	assert.Equal(t, 1.0, summary.MostLikelyScoreProb)
}

// TestDistribution_ZeroMaxGoals tests the single-cell matrix
func TestDistribution_ZeroMaxGoals(t *testing.T) {
	summary, err := Distribution(1.2, 0.7, 0)

	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1.9), summary.DrawProb, 1e-12)
	assert.Equal(t, 0.0, summary.HomeWinProb)
	assert.Equal(t, 0.0, summary.AwayWinProb)
	assert.Equal(t, models.Score{}, summary.MostLikelyScore)
}

// TestDistribution_InvalidParams tests parameter validation
func TestDistribution_InvalidParams(t *testing.T) {
	tests := []struct {
		name       string
		lambdaHome float64
		lambdaAway float64
		maxGoals   int
	}{
		{name: "Negative max goals", lambdaHome: 1, lambdaAway: 1, maxGoals: -1},
		{name: "Negative home rate", lambdaHome: -0.5, lambdaAway: 1, maxGoals: 10},
		{name: "NaN away rate", lambdaHome: 1, lambdaAway: math.NaN(), maxGoals: 10},
		{name: "Infinite home rate", lambdaHome: math.Inf(1), lambdaAway: 1, maxGoals: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := Distribution(tt.lambdaHome, tt.lambdaAway, tt.maxGoals)
			assert.ErrorIs(t, err, ErrInvalidParams)
			assert.Equal(t, models.OutcomeSummary{}, summary)
		})
	}
}

// TestScoreMatrix_Total tests that the matrix mass equals the sum of the outcomes
func TestScoreMatrix_Total(t *testing.T) {
	matrix, err := NewScoreMatrix(1.4, 1.1, 6)
	require.NoError(t, err)

	homeWin, draw, awayWin := matrix.Outcomes()

	assert.InDelta(t, matrix.Total(), homeWin+draw+awayWin, 1e-12)
	assert.Len(t, matrix.Cells, 7)
	assert.Len(t, matrix.Cells[0], 7)
}
