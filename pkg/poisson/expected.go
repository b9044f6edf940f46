package poisson

import (
	"github.com/cypherlabdev/match-predictor-service/internal/models"
)

// ExpectedGoalsFor returns the Poisson rates for home against away.
//
//	lambdaHome = attack(home) * defense(away) * leagueAvgGoals * homeAdvantage
//	lambdaAway = attack(away) * defense(home) * leagueAvgGoals
func ExpectedGoalsFor(
	strengths map[string]models.TeamStrength,
	leagueAvgGoals, homeAdvantage float64,
	home, away string,
) (models.ExpectedGoals, error) {
	homeStrength, homeOK := strengths[home]
	awayStrength, awayOK := strengths[away]

	var missing []string
	if !homeOK {
		missing = append(missing, home)
	}
	if !awayOK && away != home {
		missing = append(missing, away)
	}
	if len(missing) > 0 {
		return models.ExpectedGoals{}, &UnknownTeamError{Teams: missing}
	}

	return models.ExpectedGoals{
		LambdaHome: homeStrength.AttackStrength * awayStrength.DefenseStrength * leagueAvgGoals * homeAdvantage,
		LambdaAway: awayStrength.AttackStrength * homeStrength.DefenseStrength * leagueAvgGoals,
	}, nil
}
