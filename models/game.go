package models

import "time"

// Game is a single fixture inside a tournament. HomeGoals and AwayGoals are
// either both nil or both set, and IsFinished mirrors that.
type Game struct {
	ID                int       `json:"id" db:"id"`
	TournamentID      int       `json:"tournament_id" db:"tournament_id"`
	HomeTeam          string    `json:"home_team" db:"home_team"`
	AwayTeam          string    `json:"away_team" db:"away_team"`
	StartTime         time.Time `json:"start_time" db:"start_time"`
	HomeGoals         *int      `json:"home_goals" db:"home_goals"`
	AwayGoals         *int      `json:"away_goals" db:"away_goals"`
	IsFinished        bool      `json:"is_finished" db:"is_finished"`
	ExternalFixtureID *int      `json:"external_fixture_id,omitempty" db:"external_fixture_id"`
	HomeCrestURL      *string   `json:"home_crest_url,omitempty" db:"home_crest_url"`
	AwayCrestURL      *string   `json:"away_crest_url,omitempty" db:"away_crest_url"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// HasResult reports whether both goal counts have been recorded.
func (g Game) HasResult() bool {
	return g.HomeGoals != nil && g.AwayGoals != nil
}

// HasStarted reports whether kickoff is at or before now. Both instants are
// compared in UTC.
func (g Game) HasStarted(now time.Time) bool {
	return !now.UTC().Before(g.StartTime.UTC())
}
