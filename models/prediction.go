package models

import "time"

type Prediction struct {
	ID        int       `json:"id" db:"id"`
	GameID    int       `json:"game_id" db:"game_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	HomeGoals int       `json:"home_goals" db:"home_goals"`
	AwayGoals int       `json:"away_goals" db:"away_goals"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PredictionDetail is a prediction joined with its game and author.
type PredictionDetail struct {
	Prediction
	HomeTeam        string    `db:"home_team"`
	AwayTeam        string    `db:"away_team"`
	GameStartTime   time.Time `db:"game_start_time"`
	UserDisplayName string    `db:"user_display_name"`
}
