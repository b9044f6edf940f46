package poisson

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned when there are no matches to derive a league average from
	ErrEmptyInput = errors.New("empty input: no matches")

	// ErrDivideByZero is returned when no away goals were scored in the whole history,
	// leaving the home advantage undefined
	ErrDivideByZero = errors.New("divide by zero: total away goals is zero")

	// ErrUnknownTeam is returned when a fixture references a team absent from the history
	ErrUnknownTeam = errors.New("unknown team")

	// ErrInvalidParams is returned for negative rates, negative maxGoals or malformed fixtures
	ErrInvalidParams = errors.New("invalid parameters")
)

// UnknownTeamError lists every team name that could not be found
type UnknownTeamError struct {
	Teams []string
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("unknown team(s) not found in team statistics: %s", strings.Join(e.Teams, ", "))
}

// Unwrap makes errors.Is(err, ErrUnknownTeam) hold
func (e *UnknownTeamError) Unwrap() error {
	return ErrUnknownTeam
}
