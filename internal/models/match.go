package models

// MatchRecord represents one played match from the league history
type MatchRecord struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
}

// TeamStrength holds a team's accumulated goals and its strength relative to the league
type TeamStrength struct {
	Team             string  `json:"team"`
	GoalsScored      int     `json:"goals_scored"`
	GoalsConceded    int     `json:"goals_conceded"`
	MatchesPlayed    int     `json:"matches_played"`
	AvgGoalsScored   float64 `json:"avg_goals_scored"`
	AvgGoalsConceded float64 `json:"avg_goals_conceded"`
	AttackStrength   float64 `json:"attack_strength"`  // AvgGoalsScored / league average
	DefenseStrength  float64 `json:"defense_strength"` // AvgGoalsConceded / league average
}

// LeagueContext holds the league-wide baseline shared by every fixture
type LeagueContext struct {
	LeagueAvgGoals float64 `json:"league_avg_goals"` // Goals per team per match
	HomeAdvantage  float64 `json:"home_advantage"`   // Total home goals / total away goals
}

// Fixture is a home/away pairing to predict
type Fixture struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Label returns the "Home vs Away" match label
func (f Fixture) Label() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}

// ModelParams holds parameters for outcome calculation
type ModelParams struct {
	MaxGoals int // Highest goal count per side included in the score matrix
}
