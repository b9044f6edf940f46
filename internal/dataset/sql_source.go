package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// requiredColumns are the columns every match table must carry
var requiredColumns = []string{"home_team", "away_team", "home_goals", "away_goals"}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// OpenDB opens a database connection for the sqlite or postgres driver
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: %s DSN is required", ErrInputNotFound, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping %s: %v", ErrInputNotFound, driver, err)
	}

	return db, nil
}

// SQLMatchSource reads match results from a database table with the columns
// home_team, away_team, home_goals, away_goals
type SQLMatchSource struct {
	db     *sql.DB
	table  string
	logger zerolog.Logger
}

// NewSQLMatchSource creates a new SQL match source. The source owns db.
func NewSQLMatchSource(db *sql.DB, table string, logger zerolog.Logger) (*SQLMatchSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLMatchSource{
		db:     db,
		table:  table,
		logger: logger.With().Str("component", "sql_source").Logger(),
	}, nil
}

// LoadMatches reads and validates every row of the table
func (s *SQLMatchSource) LoadMatches(ctx context.Context) ([]models.MatchRecord, error) {
	query := fmt.Sprintf(`SELECT home_team, away_team, home_goals, away_goals FROM %s`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		// A readable table lacking required columns is a schema error
		if missing, ok := s.missingColumns(ctx); ok && len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s is missing required columns %s", ErrInputSchema, s.table, strings.Join(missing, ", "))
		}
		return nil, fmt.Errorf("%w: failed to query %s: %v", ErrInputNotFound, s.table, err)
	}
	defer rows.Close()

	var matches []models.MatchRecord
	row := 0
	for rows.Next() {
		row++
		var (
			m                    models.MatchRecord
			homeGoals, awayGoals sql.NullInt64
		)
		if err := rows.Scan(&m.HomeTeam, &m.AwayTeam, &homeGoals, &awayGoals); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInputSchema, row, err)
		}
		if !homeGoals.Valid || !awayGoals.Valid {
			return nil, fmt.Errorf("%w: row %d: goals are NULL", ErrInputSchema, row)
		}
		m.HomeGoals = int(homeGoals.Int64)
		m.AwayGoals = int(awayGoals.Int64)
		if err := validateRecord(m); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInputSchema, row, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", s.table, err)
	}

	s.logger.Info().
		Str("table", s.table).
		Int("matches", len(matches)).
		Msg("loaded match results")

	return matches, nil
}

// missingColumns lists the required columns absent from the table. ok is false
// when the table itself cannot be read.
func (s *SQLMatchSource) missingColumns(ctx context.Context) (missing []string, ok bool) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, s.table))
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, false
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.ToLower(c)] = true
	}
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing, true
}

// Close closes the database connection
func (s *SQLMatchSource) Close() error {
	return s.db.Close()
}
