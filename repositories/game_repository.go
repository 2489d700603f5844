package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/jmoiron/sqlx"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameTournamentInvalid = errors.New("game tournament conflict or invalid")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error)
	ListFinishedByTournament(ctx context.Context, tournamentID int) ([]models.Game, error)
	ListExternalFixtureIDs(ctx context.Context) ([]int, error)
	Update(ctx context.Context, game *models.Game) error
	SetResult(ctx context.Context, id, homeGoals, awayGoals int) error
	Delete(ctx context.Context, id int) error
}

type postgresGameRepository struct {
	db *sqlx.DB
}

func NewPostgresGameRepository(db *sqlx.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, tournament_id, home_team, away_team, start_time, home_goals, away_goals,
	is_finished, external_fixture_id, home_crest_url, away_crest_url, created_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := `
		INSERT INTO games
			(tournament_id, home_team, away_team, start_time, external_fixture_id, home_crest_url, away_crest_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		g.TournamentID,
		g.HomeTeam,
		g.AwayTeam,
		g.StartTime.UTC(),
		g.ExternalFixtureID,
		g.HomeCrestURL,
		g.AwayCrestURL,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if constraint, ok := pqConstraintViolation(err, pqForeignKeyViolation); ok && constraint == "games_tournament_id_fkey" {
			return ErrGameTournamentInvalid
		}
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	var g models.Game
	if err := r.db.GetContext(ctx, &g, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %d: %w", id, err)
	}
	return &g, nil
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error) {
	games := make([]models.Game, 0)
	query := `SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1 ORDER BY start_time DESC, id DESC`
	if err := r.db.SelectContext(ctx, &games, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list games for tournament %d: %w", tournamentID, err)
	}
	return games, nil
}

// ListFinishedByTournament возвращает только игры с записанным результатом (оба счёта не NULL).
func (r *postgresGameRepository) ListFinishedByTournament(ctx context.Context, tournamentID int) ([]models.Game, error) {
	games := make([]models.Game, 0)
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE tournament_id = $1 AND home_goals IS NOT NULL AND away_goals IS NOT NULL
		ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &games, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list finished games for tournament %d: %w", tournamentID, err)
	}
	return games, nil
}

func (r *postgresGameRepository) ListExternalFixtureIDs(ctx context.Context) ([]int, error) {
	ids := make([]int, 0)
	query := `SELECT external_fixture_id FROM games WHERE external_fixture_id IS NOT NULL`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list external fixture ids: %w", err)
	}
	return ids, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, g *models.Game) error {
	query := `UPDATE games SET home_team = $1, away_team = $2, start_time = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, g.HomeTeam, g.AwayTeam, g.StartTime.UTC(), g.ID)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", g.ID, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) SetResult(ctx context.Context, id, homeGoals, awayGoals int) error {
	query := `UPDATE games SET home_goals = $1, away_goals = $2, is_finished = TRUE WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, homeGoals, awayGoals, id)
	if err != nil {
		return fmt.Errorf("failed to set result for game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}
