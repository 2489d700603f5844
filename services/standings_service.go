package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingEntry, error)
}

type standingsService struct {
	gameRepo       repositories.GameRepository
	predictionRepo repositories.PredictionRepository
}

func NewStandingsService(gameRepo repositories.GameRepository, predictionRepo repositories.PredictionRepository) StandingsService {
	return &standingsService{
		gameRepo:       gameRepo,
		predictionRepo: predictionRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingEntry, error) {
	games, err := s.gameRepo.ListFinishedByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load finished games for standings of tournament %d: %w", tournamentID, err)
	}
	if len(games) == 0 {
		return []models.StandingEntry{}, nil
	}

	gameIDs := make([]int, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}

	predictions, err := s.predictionRepo.ListDetailsByGames(ctx, tournamentID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for standings of tournament %d: %w", tournamentID, err)
	}

	return BuildStandings(games, predictions), nil
}

type gameResult struct {
	home, away int
}

// BuildStandings считает таблицу по завершённым играм и прогнозам на них.
// Прогнозы на игры без результата пропускаются. Порядок входных прогнозов
// задаёт порядок при полном равенстве ключей сортировки.
func BuildStandings(finished []models.Game, predictions []models.PredictionDetail) []models.StandingEntry {
	results := make(map[int]gameResult, len(finished))
	for _, g := range finished {
		if !g.HasResult() {
			continue
		}
		results[g.ID] = gameResult{home: *g.HomeGoals, away: *g.AwayGoals}
	}

	tallies := make([]*models.StandingEntry, 0)
	byUser := make(map[int]*models.StandingEntry)
	for _, p := range predictions {
		result, ok := results[p.GameID]
		if !ok {
			continue
		}
		tally, seen := byUser[p.UserID]
		if !seen {
			tally = &models.StandingEntry{UserDisplayName: p.UserDisplayName}
			byUser[p.UserID] = tally
			tallies = append(tallies, tally)
		}

		score := ScorePrediction(result.home, result.away, p.HomeGoals, p.AwayGoals)
		tally.Points += score.Points
		if score.Exact {
			tally.CorrectScores++
		}
		tally.TotalPredictions++
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		a, b := tallies[i], tallies[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.CorrectScores != b.CorrectScores {
			return a.CorrectScores > b.CorrectScores
		}
		return a.TotalPredictions < b.TotalPredictions
	})

	standings := make([]models.StandingEntry, len(tallies))
	for i, tally := range tallies {
		standings[i] = *tally
		standings[i].Position = i + 1
	}
	return standings
}
