package models

import "time"

// Tournament представляет турнир, на матчи которого делаются прогнозы.
type Tournament struct {
	ID               int       `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Slug             string    `json:"slug" db:"slug"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	ExternalLeagueID *int      `json:"external_league_id,omitempty" db:"external_league_id"`
	ExternalSeason   *int      `json:"external_season,omitempty" db:"external_season"`
	EmblemKey        *string   `json:"-" db:"emblem_key"`
	EmblemURL        *string   `json:"emblem_url,omitempty" db:"emblem_url"`
}

// IsLinked сообщает, привязан ли турнир к лиге внешнего football-data API.
func (t Tournament) IsLinked() bool {
	return t.ExternalLeagueID != nil && t.ExternalSeason != nil
}
