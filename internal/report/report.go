package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Header is the column row of a prediction report
var Header = []string{
	"Match",
	"Expected Goals",
	"Most Likely Score",
	"Score Probability",
	"Predicted Outcome",
	"Outcome Probability",
	"Win/Draw/Loss",
}

// Row is one formatted report line
type Row struct {
	Match              string
	ExpectedGoals      string
	MostLikelyScore    string
	ScoreProbability   string
	PredictedOutcome   string
	OutcomeProbability string
	WinDrawLoss        string
}

// NewRow formats a prediction for the report
func NewRow(p *models.Prediction) Row {
	s := p.Summary
	return Row{
		Match:              p.Fixture.Label(),
		ExpectedGoals:      fmt.Sprintf("%s - %s", Fixed(p.ExpectedGoals.LambdaHome), Fixed(p.ExpectedGoals.LambdaAway)),
		MostLikelyScore:    fmt.Sprintf("%d - %d", s.MostLikelyScore.Home, s.MostLikelyScore.Away),
		ScoreProbability:   Percent(s.MostLikelyScoreProb),
		PredictedOutcome:   p.Outcome.Label(),
		OutcomeProbability: Percent(p.OutcomeProb),
		WinDrawLoss:        fmt.Sprintf("%s - %s - %s", Percent(s.HomeWinProb), Percent(s.DrawProb), Percent(s.AwayWinProb)),
	}
}

// Record returns the row in column order
func (r Row) Record() []string {
	return []string{
		r.Match,
		r.ExpectedGoals,
		r.MostLikelyScore,
		r.ScoreProbability,
		r.PredictedOutcome,
		r.OutcomeProbability,
		r.WinDrawLoss,
	}
}

// Fixed rounds v half away from zero to two decimals
func Fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent renders a probability as a percentage with two decimals, e.g. 0.45678 -> "45.68%"
func Percent(p float64) string {
	return decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// OutputFileName derives the report name from the input file name: the part of the
// base name after its last underscore, without extension. "uitslagen_poule-a.csv"
// gives "predictions_poule-a.csv".
func OutputFileName(input string) string {
	base := filepath.Base(input)
	if i := strings.LastIndex(base, "_"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == string(filepath.Separator) {
		return "predictions.csv"
	}
	return "predictions_" + base + ".csv"
}

// Write writes the header and one row per prediction
func Write(w io.Writer, predictions []*models.Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range predictions {
		if err := cw.Write(NewRow(p).Record()); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", p.Fixture.Label(), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// WriteCSV writes the report to path. The file only appears once it is complete.
func WriteCSV(path string, predictions []*models.Prediction) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".predictions-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(tmp, predictions); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move report to %s: %w", path, err)
	}
	return nil
}
