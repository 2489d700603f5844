package models

// StandingEntry is one row of a tournament leaderboard. It is computed on
// every request and never persisted.
type StandingEntry struct {
	Position         int    `json:"position"`
	UserDisplayName  string `json:"user_display_name"`
	Points           int    `json:"points"`
	CorrectScores    int    `json:"correct_scores"`
	TotalPredictions int    `json:"total_predictions"`
}
