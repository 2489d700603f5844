package footballapi

import "time"

// Ответы football-data.org v4. Описаны только используемые поля.

type CompetitionsResponse struct {
	Competitions []Competition `json:"competitions"`
}

type Competition struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Emblem        *string `json:"emblem"`
	Area          Area    `json:"area"`
	CurrentSeason *Season `json:"currentSeason"`
}

type Area struct {
	Name string `json:"name"`
}

type Season struct {
	StartDate string `json:"startDate"`
}

type MatchesResponse struct {
	Matches []Match `json:"matches"`
}

const MatchStatusFinished = "FINISHED"

type Match struct {
	ID       int       `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam Team      `json:"homeTeam"`
	AwayTeam Team      `json:"awayTeam"`
	Score    Score     `json:"score"`
}

type Team struct {
	Name      *string `json:"name"`
	ShortName *string `json:"shortName"`
	Crest     *string `json:"crest"`
}

// DisplayName возвращает короткое имя команды, иначе полное. Пусто для ещё не определённых участников.
func (t Team) DisplayName() string {
	if t.ShortName != nil && *t.ShortName != "" {
		return *t.ShortName
	}
	if t.Name != nil {
		return *t.Name
	}
	return ""
}

type Score struct {
	FullTime Goals `json:"fullTime"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type StandingsResponse struct {
	Standings []StandingGroup `json:"standings"`
}

type StandingGroup struct {
	Stage string        `json:"stage"`
	Type  string        `json:"type"`
	Group *string       `json:"group"`
	Table []StandingRow `json:"table"`
}

type StandingRow struct {
	Position       int  `json:"position"`
	Team           Team `json:"team"`
	PlayedGames    int  `json:"playedGames"`
	Won            int  `json:"won"`
	Draw           int  `json:"draw"`
	Lost           int  `json:"lost"`
	Points         int  `json:"points"`
	GoalsFor       int  `json:"goalsFor"`
	GoalsAgainst   int  `json:"goalsAgainst"`
	GoalDifference int  `json:"goalDifference"`
}
