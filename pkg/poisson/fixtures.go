package poisson

import (
	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// Teams returns every team in the history in order of first appearance
func Teams(matches []models.MatchRecord) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, m := range matches {
		for _, name := range []string{m.HomeTeam, m.AwayTeam} {
			if !seen[name] {
				seen[name] = true
				teams = append(teams, name)
			}
		}
	}
	return teams
}

// RemainingFixtures returns every ordered home/away pairing of teams that has not
// been played in that orientation yet. A played A-B leaves B-A remaining.
// Fixtures are emitted row-major over teams.
func RemainingFixtures(matches []models.MatchRecord, teams []string) []models.Fixture {
	played := make(map[models.Fixture]bool, len(matches))
	for _, m := range matches {
		played[models.Fixture{HomeTeam: m.HomeTeam, AwayTeam: m.AwayTeam}] = true
	}

	var fixtures []models.Fixture
	for _, home := range teams {
		for _, away := range teams {
			if home == away {
				continue
			}
			f := models.Fixture{HomeTeam: home, AwayTeam: away}
			if played[f] {
				continue
			}
			// a repeated team name must not yield the same fixture twice
			played[f] = true
			fixtures = append(fixtures, f)
		}
	}
	return fixtures
}
