package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/jonboulle/clockwork"
)

// PredictionView is the public representation of a prediction.
type PredictionView struct {
	ID                 int       `json:"id"`
	GameID             int       `json:"game_id"`
	HomeTeam           string    `json:"home_team"`
	AwayTeam           string    `json:"away_team"`
	PredictedHomeGoals int       `json:"predicted_home_goals"`
	PredictedAwayGoals int       `json:"predicted_away_goals"`
	UserDisplayName    string    `json:"user_display_name"`
	CreatedAt          time.Time `json:"created_at"`
}

// PredictionService закрывает приём и просмотр прогнозов в момент начала игры.
//
// PlacePrediction и GetGamePredictions возвращают (nil, nil) / пустой список,
// если игра не найдена или время не подходит: это штатное состояние, а не ошибка.
type PredictionService interface {
	PlacePrediction(ctx context.Context, gameID, userID, homeGoals, awayGoals int) (*PredictionView, error)
	GetGamePredictions(ctx context.Context, gameID int) ([]PredictionView, error)
	GetMyPredictions(ctx context.Context, tournamentID, userID int) ([]PredictionView, error)
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	gameRepo       repositories.GameRepository
	userRepo       repositories.UserRepository
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	clock clockwork.Clock,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		clock:          clock,
		logger:         logger,
	}
}

func (s *predictionService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *predictionService) PlacePrediction(ctx context.Context, gameID, userID, homeGoals, awayGoals int) (*PredictionView, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return nil, ErrInvalidGoals
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game %d for prediction: %w", gameID, err)
	}

	now := s.now()
	if game.HasStarted(now) {
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d for prediction: %w", userID, err)
	}

	prediction := &models.Prediction{
		GameID:    gameID,
		UserID:    userID,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		CreatedAt: now,
	}

	err = s.predictionRepo.Upsert(ctx, prediction)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrPredictionDuplicate):
		if err := s.retryAsUpdate(ctx, prediction); err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrPredictionGameInvalid):
		// Игру удалили между проверкой и записью.
		return nil, nil
	case errors.Is(err, repositories.ErrPredictionUserInvalid):
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("failed to save prediction for game %d: %w", gameID, err)
	}

	view := toPredictionView(prediction, game.HomeTeam, game.AwayTeam, user.DisplayName)
	return &view, nil
}

// retryAsUpdate перечитывает существующую строку и перезаписывает в ней счёт.
// created_at остаётся от первой вставки.
func (s *predictionService) retryAsUpdate(ctx context.Context, p *models.Prediction) error {
	existing, err := s.predictionRepo.GetByGameAndUser(ctx, p.GameID, p.UserID)
	if err == nil {
		err = s.predictionRepo.UpdateGoals(ctx, existing.ID, p.HomeGoals, p.AwayGoals)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "prediction upsert conflict was not recoverable",
			slog.Int("game_id", p.GameID),
			slog.Int("user_id", p.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrPredictionConflict, err)
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return nil
}

func (s *predictionService) GetGamePredictions(ctx context.Context, gameID int) ([]PredictionView, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return []PredictionView{}, nil
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if !game.HasStarted(s.now()) {
		return []PredictionView{}, nil
	}

	details, err := s.predictionRepo.ListDetailsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for game %d: %w", gameID, err)
	}
	return detailsToViews(details), nil
}

func (s *predictionService) GetMyPredictions(ctx context.Context, tournamentID, userID int) ([]PredictionView, error) {
	details, err := s.predictionRepo.ListDetailsByTournamentAndUser(ctx, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %d in tournament %d: %w", userID, tournamentID, err)
	}
	return detailsToViews(details), nil
}

func toPredictionView(p *models.Prediction, homeTeam, awayTeam, displayName string) PredictionView {
	return PredictionView{
		ID:                 p.ID,
		GameID:             p.GameID,
		HomeTeam:           homeTeam,
		AwayTeam:           awayTeam,
		PredictedHomeGoals: p.HomeGoals,
		PredictedAwayGoals: p.AwayGoals,
		UserDisplayName:    displayName,
		CreatedAt:          p.CreatedAt,
	}
}

func detailsToViews(details []models.PredictionDetail) []PredictionView {
	views := make([]PredictionView, 0, len(details))
	for i := range details {
		d := &details[i]
		views = append(views, toPredictionView(&d.Prediction, d.HomeTeam, d.AwayTeam, d.UserDisplayName))
	}
	return views
}
