package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/jmoiron/sqlx"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	ListLinked(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateEmblem(ctx context.Context, id int, emblemKey, emblemURL *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sqlx.DB
}

func NewPostgresTournamentRepository(db *sqlx.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, slug, created_at, external_league_id, external_season, emblem_key, emblem_url`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, slug, external_league_id, external_season, emblem_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowxContext(ctx, query,
		t.Name,
		t.Slug,
		t.ExternalLeagueID,
		t.ExternalSeason,
		t.EmblemURL,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.GetContext(ctx, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return &t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &tournaments, query); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListLinked(ctx context.Context) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0)
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE external_league_id IS NOT NULL AND external_season IS NOT NULL
		ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &tournaments, query); err != nil {
		return nil, fmt.Errorf("failed to list linked tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET name = $1, slug = $2 WHERE id = $3`,
		t.Name, t.Slug, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateEmblem(ctx context.Context, id int, emblemKey, emblemURL *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET emblem_key = $1, emblem_url = $2 WHERE id = $3`,
		emblemKey, emblemURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update emblem for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete удаляет турнир; игры и прогнозы удаляются каскадно на уровне схемы.
func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
