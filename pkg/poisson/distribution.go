package poisson

import (
	"fmt"
	"math"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// DefaultMaxGoals bounds the score matrix at 0..10 goals per side. Raising it
// shrinks the probability mass lost to truncation at quadratic cost.
const DefaultMaxGoals = 10

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda)
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logFact, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - logFact)
}

// ScoreMatrix is the joint probability table of home and away goal counts,
// assuming the two counts are independent. Cells[i][j] = P(home = i, away = j).
type ScoreMatrix struct {
	MaxGoals int
	Cells    [][]float64
}

// NewScoreMatrix builds the (maxGoals+1) x (maxGoals+1) outer product of the two PMFs
func NewScoreMatrix(lambdaHome, lambdaAway float64, maxGoals int) (*ScoreMatrix, error) {
	if maxGoals < 0 {
		return nil, fmt.Errorf("%w: maxGoals must be >= 0, got %d", ErrInvalidParams, maxGoals)
	}
	if !validRate(lambdaHome) || !validRate(lambdaAway) {
		return nil, fmt.Errorf("%w: expected goals must be finite and >= 0, got %v - %v",
			ErrInvalidParams, lambdaHome, lambdaAway)
	}

	homePMF := make([]float64, maxGoals+1)
	awayPMF := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		homePMF[k] = PoissonPMF(k, lambdaHome)
		awayPMF[k] = PoissonPMF(k, lambdaAway)
	}

	cells := make([][]float64, maxGoals+1)
	for i := range cells {
		cells[i] = make([]float64, maxGoals+1)
		for j := range cells[i] {
			cells[i][j] = homePMF[i] * awayPMF[j]
		}
	}

	return &ScoreMatrix{MaxGoals: maxGoals, Cells: cells}, nil
}

// Outcomes sums the lower triangle (home win), diagonal (draw) and upper triangle (away win)
func (m *ScoreMatrix) Outcomes() (homeWin, draw, awayWin float64) {
	for i, row := range m.Cells {
		for j, p := range row {
			switch {
			case i > j:
				homeWin += p
			case i == j:
				draw += p
			default:
				awayWin += p
			}
		}
	}
	return homeWin, draw, awayWin
}

// MostLikely returns the cell with the highest probability. The scan is
// row-major and keeps the first maximum, so ties resolve to the lowest home
// goals and then the lowest away goals.
func (m *ScoreMatrix) MostLikely() (models.Score, float64) {
	best := models.Score{}
	bestProb := -1.0
	for i, row := range m.Cells {
		for j, p := range row {
			if p > bestProb {
				best = models.Score{Home: i, Away: j}
				bestProb = p
			}
		}
	}
	return best, bestProb
}

// Total returns the probability mass inside the matrix. It is below 1 by the
// chance of either side scoring more than MaxGoals.
func (m *ScoreMatrix) Total() float64 {
	total := 0.0
	for _, row := range m.Cells {
		for _, p := range row {
			total += p
		}
	}
	return total
}

// Distribution computes win/draw/loss probabilities and the most likely scoreline
func Distribution(lambdaHome, lambdaAway float64, maxGoals int) (models.OutcomeSummary, error) {
	matrix, err := NewScoreMatrix(lambdaHome, lambdaAway, maxGoals)
	if err != nil {
		return models.OutcomeSummary{}, err
	}

	homeWin, draw, awayWin := matrix.Outcomes()
	score, scoreProb := matrix.MostLikely()

	return models.OutcomeSummary{
		HomeWinProb:         homeWin,
		DrawProb:            draw,
		AwayWinProb:         awayWin,
		MostLikelyScore:     score,
		MostLikelyScoreProb: scoreProb,
	}, nil
}

func validRate(lambda float64) bool {
	return lambda >= 0 && !math.IsInf(lambda, 1)
}
