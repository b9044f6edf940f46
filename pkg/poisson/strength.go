package poisson

import (
	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// EstimateStrengths derives the league average goals per team per match and
// every team's attack and defense strength relative to it.
func EstimateStrengths(matches []models.MatchRecord) (map[string]models.TeamStrength, float64, error) {
	if len(matches) == 0 {
		return nil, 0, ErrEmptyInput
	}

	totalGoals := 0
	strengths := make(map[string]models.TeamStrength)
	for _, m := range matches {
		totalGoals += m.HomeGoals + m.AwayGoals

		home := strengths[m.HomeTeam]
		home.Team = m.HomeTeam
		home.GoalsScored += m.HomeGoals
		home.GoalsConceded += m.AwayGoals
		home.MatchesPlayed++
		strengths[m.HomeTeam] = home

		away := strengths[m.AwayTeam]
		away.Team = m.AwayTeam
		away.GoalsScored += m.AwayGoals
		away.GoalsConceded += m.HomeGoals
		away.MatchesPlayed++
		strengths[m.AwayTeam] = away
	}

	leagueAvgGoals := float64(totalGoals) / float64(2*len(matches))

	for name, s := range strengths {
		s.AvgGoalsScored = ratio(float64(s.GoalsScored), float64(s.MatchesPlayed))
		s.AvgGoalsConceded = ratio(float64(s.GoalsConceded), float64(s.MatchesPlayed))
		s.AttackStrength = ratio(s.AvgGoalsScored, leagueAvgGoals)
		s.DefenseStrength = ratio(s.AvgGoalsConceded, leagueAvgGoals)
		strengths[name] = s
	}

	return strengths, leagueAvgGoals, nil
}

// EstimateHomeAdvantage returns total home goals divided by total away goals.
// A zero denominator is an error rather than a default of 1.0.
func EstimateHomeAdvantage(matches []models.MatchRecord) (float64, error) {
	homeGoals, awayGoals := 0, 0
	for _, m := range matches {
		homeGoals += m.HomeGoals
		awayGoals += m.AwayGoals
	}
	if awayGoals == 0 {
		return 0, ErrDivideByZero
	}
	return float64(homeGoals) / float64(awayGoals), nil
}

// ratio divides, yielding 0 when the denominator is zero
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
