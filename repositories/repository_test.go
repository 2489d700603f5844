package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/prediction-league/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	gameRowColumns = []string{"id", "tournament_id", "home_team", "away_team", "start_time", "home_goals",
		"away_goals", "is_finished", "external_fixture_id", "home_crest_url", "away_crest_url", "created_at"}
	detailRowColumns = []string{"id", "game_id", "user_id", "home_goals", "away_goals", "created_at",
		"home_team", "away_team", "game_start_time", "user_display_name"}
)

type RepositoryTestSuite struct {
	suite.Suite
	db   *sqlx.DB
	mock sqlmock.Sqlmock
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	mockDB, mock, err := sqlmock.New()
	require.NoError(s.T(), err)

	s.db = sqlx.NewDb(mockDB, "sqlmock")
	s.mock = mock
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.db.Close()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestUserCreate_EmailConflict() {
	repo := NewPostgresUserRepository(s.db)

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, display_name, password_hash, role)`)).
		WithArgs("a@b.c", "Alice", "hash", "user").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"})

	err := repo.Create(s.ctx, &models.User{Email: "a@b.c", DisplayName: "Alice", PasswordHash: "hash", Role: models.RoleUser})
	assert.ErrorIs(s.T(), err, ErrUserEmailConflict)
}

func (s *RepositoryTestSuite) TestUserGetByEmail_NotFound() {
	repo := NewPostgresUserRepository(s.db)

	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).
		WithArgs("nobody@x.y").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash", "role", "created_at"}))

	user, err := repo.GetByEmail(s.ctx, "nobody@x.y")
	assert.Nil(s.T(), user)
	assert.ErrorIs(s.T(), err, ErrUserNotFound)
}

func (s *RepositoryTestSuite) TestTournamentUpdate_NotFound() {
	repo := NewPostgresTournamentRepository(s.db)

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE tournaments SET name = $1, slug = $2 WHERE id = $3`)).
		WithArgs("Cup", "cup", 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(s.ctx, &models.Tournament{ID: 42, Name: "Cup", Slug: "cup"})
	assert.ErrorIs(s.T(), err, ErrTournamentNotFound)
}

func (s *RepositoryTestSuite) TestTournamentCreate_WithinTransaction() {
	repo := NewPostgresTournamentRepository(s.db)
	txManager := NewTxManager(s.db)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tournaments`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))
	s.mock.ExpectCommit()

	t := &models.Tournament{Name: "Premier League", Slug: "premier-league"}
	err := txManager.WithinTx(s.ctx, func(exec SQLExecutor) error {
		return repo.Create(s.ctx, exec, t)
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 7, t.ID)
	assert.Equal(s.T(), created, t.CreatedAt)
}

func (s *RepositoryTestSuite) TestTxManager_RollsBackOnError() {
	txManager := NewTxManager(s.db)
	boom := errors.New("boom")

	s.mock.ExpectBegin()
	s.mock.ExpectRollback()

	err := txManager.WithinTx(s.ctx, func(exec SQLExecutor) error { return boom })
	assert.ErrorIs(s.T(), err, boom)
}

func (s *RepositoryTestSuite) TestGameListFinishedByTournament() {
	repo := NewPostgresGameRepository(s.db)
	kickoff := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(regexp.QuoteMeta(`home_goals IS NOT NULL AND away_goals IS NOT NULL`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(gameRowColumns).
			AddRow(1, 3, "Arsenal", "Chelsea", kickoff, 2, 1, true, nil, nil, nil, kickoff).
			AddRow(2, 3, "Spurs", "Everton", kickoff, 0, 0, true, 555, nil, nil, kickoff))

	games, err := repo.ListFinishedByTournament(s.ctx, 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), games, 2)
	assert.Equal(s.T(), 2, *games[0].HomeGoals)
	assert.True(s.T(), games[1].HasResult())
	require.NotNil(s.T(), games[1].ExternalFixtureID)
	assert.Equal(s.T(), 555, *games[1].ExternalFixtureID)
}

func (s *RepositoryTestSuite) TestGameCreate_UnknownTournament() {
	repo := NewPostgresGameRepository(s.db)

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO games`)).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "games_tournament_id_fkey"})

	err := repo.Create(s.ctx, nil, &models.Game{TournamentID: 99, HomeTeam: "A", AwayTeam: "B", StartTime: time.Now()})
	assert.ErrorIs(s.T(), err, ErrGameTournamentInvalid)
}

func (s *RepositoryTestSuite) TestGameSetResult_MarksFinished() {
	repo := NewPostgresGameRepository(s.db)

	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE games SET home_goals = $1, away_goals = $2, is_finished = TRUE WHERE id = $3`)).
		WithArgs(3, 1, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(s.T(), repo.SetResult(s.ctx, 10, 3, 1))
}

func (s *RepositoryTestSuite) TestPredictionUpsert_ReturnsOriginalCreatedAt() {
	repo := NewPostgresPredictionRepository(s.db)
	firstPlaced := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (game_id, user_id) DO UPDATE`)).
		WithArgs(5, 8, 2, 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, firstPlaced))

	p := &models.Prediction{GameID: 5, UserID: 8, HomeGoals: 2, AwayGoals: 2, CreatedAt: firstPlaced.Add(time.Hour)}
	require.NoError(s.T(), repo.Upsert(s.ctx, p))
	assert.Equal(s.T(), 11, p.ID)
	assert.Equal(s.T(), firstPlaced, p.CreatedAt)
}

func (s *RepositoryTestSuite) TestPredictionUpsert_MapsConstraintErrors() {
	repo := NewPostgresPredictionRepository(s.db)

	cases := []struct {
		pqErr *pq.Error
		want  error
	}{
		{&pq.Error{Code: pqUniqueViolation, Constraint: "predictions_game_id_user_id_key"}, ErrPredictionDuplicate},
		{&pq.Error{Code: pqForeignKeyViolation, Constraint: "predictions_game_id_fkey"}, ErrPredictionGameInvalid},
		{&pq.Error{Code: pqForeignKeyViolation, Constraint: "predictions_user_id_fkey"}, ErrPredictionUserInvalid},
	}
	for _, tc := range cases {
		s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO predictions`)).WillReturnError(tc.pqErr)

		err := repo.Upsert(s.ctx, &models.Prediction{GameID: 1, UserID: 1})
		assert.ErrorIs(s.T(), err, tc.want)
	}
}

func (s *RepositoryTestSuite) TestPredictionListDetailsByGames_EmptyIDsSkipsQuery() {
	repo := NewPostgresPredictionRepository(s.db)

	details, err := repo.ListDetailsByGames(s.ctx, 1, nil)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), details)
	assert.Empty(s.T(), details)
}

func (s *RepositoryTestSuite) TestPredictionListDetailsByGames() {
	repo := NewPostgresPredictionRepository(s.db)
	ts := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(regexp.QuoteMeta(`p.game_id = ANY($2)`)).
		WithArgs(4, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(detailRowColumns).
			AddRow(1, 10, 100, 1, 0, ts, "Arsenal", "Chelsea", ts, "Alice").
			AddRow(2, 10, 200, 2, 2, ts, "Arsenal", "Chelsea", ts, "Bob"))

	details, err := repo.ListDetailsByGames(s.ctx, 4, []int{10, 11})
	require.NoError(s.T(), err)
	require.Len(s.T(), details, 2)
	assert.Equal(s.T(), "Alice", details[0].UserDisplayName)
	assert.Equal(s.T(), 200, details[1].UserID)
	assert.Equal(s.T(), "Chelsea", details[1].AwayTeam)
}

func (s *RepositoryTestSuite) TestPredictionGetByGameAndUser_NotFound() {
	repo := NewPostgresPredictionRepository(s.db)

	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE game_id = $1 AND user_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "game_id", "user_id", "home_goals", "away_goals", "created_at"}))

	p, err := repo.GetByGameAndUser(s.ctx, 1, 2)
	assert.Nil(s.T(), p)
	assert.ErrorIs(s.T(), err, ErrPredictionNotFound)
}
