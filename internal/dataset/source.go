package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/config"
	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

var (
	// ErrInputNotFound is returned when the match source cannot be read
	ErrInputNotFound = errors.New("input not found")

	// ErrInputSchema is returned when required fields are missing or malformed
	ErrInputSchema = errors.New("input schema error")
)

// Source yields the match history
type Source interface {
	LoadMatches(ctx context.Context) ([]models.MatchRecord, error)
	Close() error
}

// NewSource builds the match source selected by the input config.
// A non-empty path overrides the configured CSV path and forces the csv source.
func NewSource(ctx context.Context, cfg config.InputConfig, path string, logger zerolog.Logger) (Source, error) {
	if path != "" {
		return NewCSVMatchSource(path, logger), nil
	}

	switch cfg.Source {
	case "csv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: no input file given", ErrInputNotFound)
		}
		return NewCSVMatchSource(cfg.Path, logger), nil
	case "sql":
		db, err := OpenDB(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		source, err := NewSQLMatchSource(db, cfg.Table, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		return source, nil
	}
	return nil, fmt.Errorf("unsupported input source %q", cfg.Source)
}

// validateRecord checks one parsed match
func validateRecord(m models.MatchRecord) error {
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return fmt.Errorf("team name is empty")
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("goals must be non-negative, got %d - %d", m.HomeGoals, m.AwayGoals)
	}
	return nil
}
