package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrPredictionNotFound    = errors.New("prediction not found")
	ErrPredictionDuplicate   = errors.New("prediction for this game and user already exists")
	ErrPredictionGameInvalid = errors.New("prediction game conflict or invalid")
	ErrPredictionUserInvalid = errors.New("prediction user conflict or invalid")
)

type PredictionRepository interface {
	// Upsert вставляет прогноз или перезаписывает счёт существующего по (game_id, user_id).
	// created_at сохраняется от первой вставки.
	Upsert(ctx context.Context, prediction *models.Prediction) error
	GetByGameAndUser(ctx context.Context, gameID, userID int) (*models.Prediction, error)
	UpdateGoals(ctx context.Context, id, homeGoals, awayGoals int) error
	ListDetailsByGame(ctx context.Context, gameID int) ([]models.PredictionDetail, error)
	ListDetailsByTournamentAndUser(ctx context.Context, tournamentID, userID int) ([]models.PredictionDetail, error)
	ListDetailsByGames(ctx context.Context, tournamentID int, gameIDs []int) ([]models.PredictionDetail, error)
}

type postgresPredictionRepository struct {
	db *sqlx.DB
}

func NewPostgresPredictionRepository(db *sqlx.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionDetailSelect = `
	SELECT p.id, p.game_id, p.user_id, p.home_goals, p.away_goals, p.created_at,
		g.home_team, g.away_team, g.start_time AS game_start_time,
		u.display_name AS user_display_name
	FROM predictions p
	JOIN games g ON g.id = p.game_id
	JOIN users u ON u.id = p.user_id`

func (r *postgresPredictionRepository) Upsert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (game_id, user_id, home_goals, away_goals, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, user_id) DO UPDATE
			SET home_goals = EXCLUDED.home_goals, away_goals = EXCLUDED.away_goals
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.GameID,
		p.UserID,
		p.HomeGoals,
		p.AwayGoals,
		p.CreatedAt.UTC(),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapPredictionWriteError(err)
	}
	return nil
}

func mapPredictionWriteError(err error) error {
	if _, ok := pqConstraintViolation(err, pqUniqueViolation); ok {
		return ErrPredictionDuplicate
	}
	if constraint, ok := pqConstraintViolation(err, pqForeignKeyViolation); ok {
		switch constraint {
		case "predictions_game_id_fkey":
			return ErrPredictionGameInvalid
		case "predictions_user_id_fkey":
			return ErrPredictionUserInvalid
		}
	}
	return fmt.Errorf("failed to upsert prediction: %w", err)
}

func (r *postgresPredictionRepository) GetByGameAndUser(ctx context.Context, gameID, userID int) (*models.Prediction, error) {
	var p models.Prediction
	query := `
		SELECT id, game_id, user_id, home_goals, away_goals, created_at
		FROM predictions
		WHERE game_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &p, query, gameID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to get prediction for game %d user %d: %w", gameID, userID, err)
	}
	return &p, nil
}

func (r *postgresPredictionRepository) UpdateGoals(ctx context.Context, id, homeGoals, awayGoals int) error {
	query := `UPDATE predictions SET home_goals = $1, away_goals = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, homeGoals, awayGoals, id)
	if err != nil {
		return fmt.Errorf("failed to update prediction %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) ListDetailsByGame(ctx context.Context, gameID int) ([]models.PredictionDetail, error) {
	details := make([]models.PredictionDetail, 0)
	query := predictionDetailSelect + ` WHERE p.game_id = $1 ORDER BY p.id ASC`
	if err := r.db.SelectContext(ctx, &details, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to list predictions for game %d: %w", gameID, err)
	}
	return details, nil
}

func (r *postgresPredictionRepository) ListDetailsByTournamentAndUser(ctx context.Context, tournamentID, userID int) ([]models.PredictionDetail, error) {
	details := make([]models.PredictionDetail, 0)
	query := predictionDetailSelect + `
		WHERE g.tournament_id = $1 AND p.user_id = $2
		ORDER BY g.start_time DESC, g.id DESC`
	if err := r.db.SelectContext(ctx, &details, query, tournamentID, userID); err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %d in tournament %d: %w", userID, tournamentID, err)
	}
	return details, nil
}

// ListDetailsByGames возвращает прогнозы на указанные игры турнира в порядке возрастания id.
// Порядок важен: таблица результатов сортируется стабильно поверх него.
func (r *postgresPredictionRepository) ListDetailsByGames(ctx context.Context, tournamentID int, gameIDs []int) ([]models.PredictionDetail, error) {
	details := make([]models.PredictionDetail, 0)
	if len(gameIDs) == 0 {
		return details, nil
	}
	ids := make([]int64, len(gameIDs))
	for i, id := range gameIDs {
		ids[i] = int64(id)
	}
	query := predictionDetailSelect + `
		WHERE g.tournament_id = $1 AND p.game_id = ANY($2)
		ORDER BY p.id ASC`
	if err := r.db.SelectContext(ctx, &details, query, tournamentID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list predictions for tournament %d: %w", tournamentID, err)
	}
	return details, nil
}
