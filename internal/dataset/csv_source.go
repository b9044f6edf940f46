package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Required CSV columns
const (
	ColumnHomeTeam  = "HomeTeam"
	ColumnAwayTeam  = "AwayTeam"
	ColumnHomeGoals = "HomeGoals"
	ColumnAwayGoals = "AwayGoals"
)

var (
	matchColumns   = []string{ColumnHomeTeam, ColumnAwayTeam, ColumnHomeGoals, ColumnAwayGoals}
	fixtureColumns = []string{ColumnHomeTeam, ColumnAwayTeam}
)

// CSVMatchSource reads match results from a CSV file with a header row
type CSVMatchSource struct {
	path   string
	logger zerolog.Logger
}

// NewCSVMatchSource creates a new CSV match source
func NewCSVMatchSource(path string, logger zerolog.Logger) *CSVMatchSource {
	return &CSVMatchSource{
		path:   path,
		logger: logger.With().Str("component", "csv_source").Logger(),
	}
}

// Path returns the file the source reads
func (s *CSVMatchSource) Path() string {
	return s.path
}

// LoadMatches reads and validates every match in the file
func (s *CSVMatchSource) LoadMatches(ctx context.Context) ([]models.MatchRecord, error) {
	f, err := openInput(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	matches, err := ParseMatches(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("matches", len(matches)).
		Msg("loaded match results")

	return matches, nil
}

// Close is a no-op for files
func (s *CSVMatchSource) Close() error {
	return nil
}

// ParseMatches reads match records from CSV. Columns may appear in any order and
// extra columns are ignored.
func ParseMatches(r io.Reader) ([]models.MatchRecord, error) {
	reader, index, err := newTableReader(r, matchColumns)
	if err != nil {
		return nil, err
	}

	var matches []models.MatchRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputSchema, err)
		}
		line, _ := reader.FieldPos(0)

		homeGoals, err := parseGoals(record[index[ColumnHomeGoals]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrInputSchema, line, ColumnHomeGoals, err)
		}
		awayGoals, err := parseGoals(record[index[ColumnAwayGoals]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrInputSchema, line, ColumnAwayGoals, err)
		}

		m := models.MatchRecord{
			HomeTeam:  strings.TrimSpace(record[index[ColumnHomeTeam]]),
			AwayTeam:  strings.TrimSpace(record[index[ColumnAwayTeam]]),
			HomeGoals: homeGoals,
			AwayGoals: awayGoals,
		}
		if err := validateRecord(m); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInputSchema, line, err)
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// ReadFixturesCSV reads a fixture list with HomeTeam and AwayTeam columns
func ReadFixturesCSV(path string) ([]models.Fixture, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fixtures, err := ParseFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fixtures, nil
}

// ParseFixtures reads fixtures from CSV
func ParseFixtures(r io.Reader) ([]models.Fixture, error) {
	reader, index, err := newTableReader(r, fixtureColumns)
	if err != nil {
		return nil, err
	}

	var fixtures []models.Fixture
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputSchema, err)
		}
		line, _ := reader.FieldPos(0)

		f := models.Fixture{
			HomeTeam: strings.TrimSpace(record[index[ColumnHomeTeam]]),
			AwayTeam: strings.TrimSpace(record[index[ColumnAwayTeam]]),
		}
		if f.HomeTeam == "" || f.AwayTeam == "" {
			return nil, fmt.Errorf("%w: line %d: team name is empty", ErrInputSchema, line)
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, nil
}

// newTableReader reads the header row and maps each required column to its index
func newTableReader(r io.Reader, required []string) (*csv.Reader, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: file is empty, expected columns %s", ErrInputSchema, strings.Join(required, ", "))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInputSchema, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, fmt.Errorf("%w: missing required columns %s", ErrInputSchema, strings.Join(missing, ", "))
	}

	return reader, index, nil
}

func parseGoals(field string) (int, error) {
	goals, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", field)
	}
	if goals < 0 {
		return 0, fmt.Errorf("negative goals: %d", goals)
	}
	return goals, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file %s not found", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrInputNotFound, path, err)
	}
	return f, nil
}
