package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/jonboulle/clockwork"
)

const maxTeamNameLength = 100

type GameInput struct {
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
}

type GameService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error)
	GetGame(ctx context.Context, tournamentID, gameID int) (*models.Game, error)
	CreateGame(ctx context.Context, tournamentID int, input GameInput) (*models.Game, error)
	UpdateGame(ctx context.Context, tournamentID, gameID int, input GameInput) (*models.Game, error)
	DeleteGame(ctx context.Context, tournamentID, gameID int) error
	// SetResult возвращает (nil, nil), если игры нет или она ещё не началась.
	SetResult(ctx context.Context, gameID, homeGoals, awayGoals int) (*models.Game, error)
}

type gameService struct {
	gameRepo       repositories.GameRepository
	tournamentRepo repositories.TournamentRepository
	clock          clockwork.Clock
}

func NewGameService(gameRepo repositories.GameRepository, tournamentRepo repositories.TournamentRepository, clock clockwork.Clock) GameService {
	return &gameService{
		gameRepo:       gameRepo,
		tournamentRepo: tournamentRepo,
		clock:          clock,
	}
}

func validateGameInput(input *GameInput) error {
	input.HomeTeam = strings.TrimSpace(input.HomeTeam)
	input.AwayTeam = strings.TrimSpace(input.AwayTeam)
	for _, name := range []string{input.HomeTeam, input.AwayTeam} {
		if !validName(name, maxTeamNameLength) {
			return ErrTeamNameInvalid
		}
	}
	if input.StartTime.IsZero() {
		return ErrStartTimeRequired
	}
	input.StartTime = input.StartTime.UTC()
	return nil
}

func (s *gameService) ensureTournament(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (s *gameService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error) {
	if err := s.ensureTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	games, err := s.gameRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for tournament %d: %w", tournamentID, err)
	}
	if games == nil {
		return []models.Game{}, nil
	}
	return games, nil
}

// GetGame возвращает игру только если она принадлежит указанному турниру.
func (s *gameService) GetGame(ctx context.Context, tournamentID, gameID int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if game.TournamentID != tournamentID {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *gameService) CreateGame(ctx context.Context, tournamentID int, input GameInput) (*models.Game, error) {
	if err := validateGameInput(&input); err != nil {
		return nil, err
	}
	game := &models.Game{
		TournamentID: tournamentID,
		HomeTeam:     input.HomeTeam,
		AwayTeam:     input.AwayTeam,
		StartTime:    input.StartTime,
	}
	if err := s.gameRepo.Create(ctx, nil, game); err != nil {
		if errors.Is(err, repositories.ErrGameTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *gameService) UpdateGame(ctx context.Context, tournamentID, gameID int, input GameInput) (*models.Game, error) {
	if err := validateGameInput(&input); err != nil {
		return nil, err
	}
	game, err := s.GetGame(ctx, tournamentID, gameID)
	if err != nil {
		return nil, err
	}
	if game.HasResult() && !input.StartTime.Equal(game.StartTime) {
		return nil, fmt.Errorf("%w: start time of a game with a result cannot be changed", ErrValidationFailed)
	}
	game.HomeTeam = input.HomeTeam
	game.AwayTeam = input.AwayTeam
	game.StartTime = input.StartTime
	if err := s.gameRepo.Update(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to update game %d: %w", gameID, err)
	}
	return game, nil
}

func (s *gameService) DeleteGame(ctx context.Context, tournamentID, gameID int) error {
	if _, err := s.GetGame(ctx, tournamentID, gameID); err != nil {
		return err
	}
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %d: %w", gameID, err)
	}
	return nil
}

func (s *gameService) SetResult(ctx context.Context, gameID, homeGoals, awayGoals int) (*models.Game, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return nil, ErrInvalidGoals
	}
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if !game.HasStarted(s.clock.Now().UTC()) {
		return nil, nil
	}

	if err := s.gameRepo.SetResult(ctx, gameID, homeGoals, awayGoals); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to set result for game %d: %w", gameID, err)
	}
	game.HomeGoals = &homeGoals
	game.AwayGoals = &awayGoals
	game.IsFinished = true
	return game, nil
}
