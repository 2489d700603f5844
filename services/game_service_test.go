package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGameFixture(now time.Time) (*memStore, GameService) {
	store := newMemStore()
	clock := clockwork.NewFakeClockAt(now)
	return store, NewGameService(memGameRepo{store}, memTournamentRepo{store}, clock)
}

func TestSetResult(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff.Add(time.Hour))
	tour := store.addTournament("cup")
	started := store.addGame(tour.ID, "A", "B", kickoff)
	upcoming := store.addGame(tour.ID, "C", "D", kickoff.Add(24*time.Hour))

	game, err := svc.SetResult(ctx, started.ID, 2, 0)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.True(t, game.IsFinished)
	assert.Equal(t, 2, *game.HomeGoals)
	assert.Equal(t, 0, *game.AwayGoals)

	game, err = svc.SetResult(ctx, upcoming.ID, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, game)

	game, err = svc.SetResult(ctx, 9999, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, game)

	_, err = svc.SetResult(ctx, started.ID, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidGoals)
}

func TestCreateGame_Validation(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff)
	tour := store.addTournament("cup")

	_, err := svc.CreateGame(ctx, tour.ID, GameInput{HomeTeam: " ", AwayTeam: "B", StartTime: kickoff})
	assert.ErrorIs(t, err, ErrTeamNameInvalid)

	_, err = svc.CreateGame(ctx, tour.ID, GameInput{HomeTeam: strings.Repeat("x", 101), AwayTeam: "B", StartTime: kickoff})
	assert.ErrorIs(t, err, ErrTeamNameInvalid)

	_, err = svc.CreateGame(ctx, tour.ID, GameInput{HomeTeam: "A", AwayTeam: "B"})
	assert.ErrorIs(t, err, ErrStartTimeRequired)

	_, err = svc.CreateGame(ctx, 777, GameInput{HomeTeam: "A", AwayTeam: "B", StartTime: kickoff})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestCreateGame_NormalizesToUTC(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff)
	tour := store.addTournament("cup")
	local := kickoff.In(time.FixedZone("CET", 3600))

	game, err := svc.CreateGame(ctx, tour.ID, GameInput{HomeTeam: " Arsenal ", AwayTeam: "Chelsea", StartTime: local})
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", game.HomeTeam)
	assert.Equal(t, time.UTC, game.StartTime.Location())
	assert.True(t, game.StartTime.Equal(kickoff))
}

func TestGetGame_ScopedToTournament(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff)
	mine := store.addTournament("mine")
	other := store.addTournament("other")
	game := store.addGame(mine.ID, "A", "B", kickoff)

	got, err := svc.GetGame(ctx, mine.ID, game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)

	_, err = svc.GetGame(ctx, other.ID, game.ID)
	assert.ErrorIs(t, err, ErrGameNotFound)

	assert.ErrorIs(t, svc.DeleteGame(ctx, other.ID, game.ID), ErrGameNotFound)
	require.NoError(t, svc.DeleteGame(ctx, mine.ID, game.ID))
}

func TestListByTournament(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff)
	tour := store.addTournament("cup")
	first := store.addGame(tour.ID, "A", "B", kickoff)
	second := store.addGame(tour.ID, "C", "D", kickoff.Add(time.Hour))

	games, err := svc.ListByTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, second.ID, games[0].ID)
	assert.Equal(t, first.ID, games[1].ID)

	_, err = svc.ListByTournament(ctx, 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUpdateGame(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff)
	tour := store.addTournament("cup")
	game := store.addGame(tour.ID, "A", "B", kickoff)

	updated, err := svc.UpdateGame(ctx, tour.ID, game.ID, GameInput{HomeTeam: "X", AwayTeam: "Y", StartTime: kickoff.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.HomeTeam)

	stored, err := memGameRepo{store}.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", stored.AwayTeam)
	assert.True(t, stored.StartTime.Equal(kickoff.Add(time.Hour)))
}

func TestUpdateGame_KickoffLockedOnceResultRecorded(t *testing.T) {
	ctx := context.Background()
	store, svc := newGameFixture(kickoff.Add(2 * time.Hour))
	tour := store.addTournament("cup")
	finished := store.addGame(tour.ID, "A", "B", kickoff, 3, 0)

	_, err := svc.UpdateGame(ctx, tour.ID, finished.ID, GameInput{HomeTeam: "A", AwayTeam: "B", StartTime: kickoff.Add(48 * time.Hour)})
	require.ErrorIs(t, err, ErrValidationFailed)

	stored, err := memGameRepo{store}.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(kickoff))
	assert.True(t, stored.IsFinished)

	// Переименование без смены времени разрешено.
	updated, err := svc.UpdateGame(ctx, tour.ID, finished.ID, GameInput{HomeTeam: "Arsenal", AwayTeam: "B", StartTime: kickoff.In(time.FixedZone("MSK", 3*3600))})
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", updated.HomeTeam)
	assert.Equal(t, 3, *updated.HomeGoals)
}
