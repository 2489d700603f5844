package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/footballapi"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// memStore is an in-memory implementation of every repository interface.
type memStore struct {
	mu sync.Mutex

	nextID      int
	users       map[int]models.User
	tournaments map[int]models.Tournament
	games       map[int]models.Game
	predictions map[int]models.Prediction

	// failNextUpsertAsDuplicate simulates a concurrent first insert winning the race.
	failNextUpsertAsDuplicate bool
	updateGoalsErr            error
	listErr                   error
	upsertCalls               int
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int]models.User{},
		tournaments: map[int]models.Tournament{},
		games:       map[int]models.Game{},
		predictions: map[int]models.Prediction{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: m.id(), Email: name + "@example.com", DisplayName: name, Role: models.RoleUser}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addTournament(name string) models.Tournament {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := models.Tournament{ID: m.id(), Name: name, Slug: name}
	m.tournaments[t.ID] = t
	return t
}

func (m *memStore) addGame(tournamentID int, home, away string, start time.Time, result ...int) models.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := models.Game{ID: m.id(), TournamentID: tournamentID, HomeTeam: home, AwayTeam: away, StartTime: start.UTC()}
	if len(result) == 2 {
		g.HomeGoals, g.AwayGoals, g.IsFinished = intPtr(result[0]), intPtr(result[1]), true
	}
	m.games[g.ID] = g
	return g
}

func (m *memStore) addPrediction(gameID, userID, home, away int) models.Prediction {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Prediction{ID: m.id(), GameID: gameID, UserID: userID, HomeGoals: home, AwayGoals: away}
	m.predictions[p.ID] = p
	return p
}

func (m *memStore) predictionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.predictions)
}

// UserRepository

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.id()
	r.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// TournamentRepository

type memTournamentRepo struct{ *memStore }

func (r memTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	r.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memTournamentRepo) ListLinked(ctx context.Context) ([]models.Tournament, error) {
	all, _ := r.List(ctx)
	out := make([]models.Tournament, 0)
	for _, t := range all {
		if t.IsLinked() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = *t
	return nil
}

func (r memTournamentRepo) UpdateEmblem(_ context.Context, id int, key, url *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.EmblemKey, t.EmblemURL = key, url
	r.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	for gid, g := range r.games {
		if g.TournamentID == id {
			delete(r.games, gid)
		}
	}
	return nil
}

// GameRepository

type memGameRepo struct{ *memStore }

func (r memGameRepo) Create(_ context.Context, _ repositories.SQLExecutor, g *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[g.TournamentID]; !ok {
		return repositories.ErrGameTournamentInvalid
	}
	g.ID = r.id()
	r.games[g.ID] = *g
	return nil
}

func (r memGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return &g, nil
}

func (r memGameRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Game, 0)
	for _, g := range r.games {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r memGameRepo) ListFinishedByTournament(_ context.Context, tournamentID int) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Game, 0)
	for _, g := range r.games {
		if g.TournamentID == tournamentID && g.HasResult() {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memGameRepo) ListExternalFixtureIDs(_ context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0)
	for _, g := range r.games {
		if g.ExternalFixtureID != nil {
			out = append(out, *g.ExternalFixtureID)
		}
	}
	return out, nil
}

func (r memGameRepo) Update(_ context.Context, g *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[g.ID]; !ok {
		return repositories.ErrGameNotFound
	}
	r.games[g.ID] = *g
	return nil
}

func (r memGameRepo) SetResult(_ context.Context, id, home, away int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.HomeGoals, g.AwayGoals, g.IsFinished = intPtr(home), intPtr(away), true
	r.games[id] = g
	return nil
}

func (r memGameRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

// PredictionRepository

type memPredictionRepo struct{ *memStore }

func (r memPredictionRepo) Upsert(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCalls++
	if r.failNextUpsertAsDuplicate {
		r.failNextUpsertAsDuplicate = false
		return repositories.ErrPredictionDuplicate
	}
	if _, ok := r.games[p.GameID]; !ok {
		return repositories.ErrPredictionGameInvalid
	}
	for id, existing := range r.predictions {
		if existing.GameID == p.GameID && existing.UserID == p.UserID {
			existing.HomeGoals, existing.AwayGoals = p.HomeGoals, p.AwayGoals
			r.predictions[id] = existing
			p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
			return nil
		}
	}
	p.ID = r.id()
	r.predictions[p.ID] = *p
	return nil
}

func (r memPredictionRepo) GetByGameAndUser(_ context.Context, gameID, userID int) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.predictions {
		if p.GameID == gameID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (r memPredictionRepo) UpdateGoals(_ context.Context, id, home, away int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateGoalsErr != nil {
		return r.updateGoalsErr
	}
	p, ok := r.predictions[id]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	p.HomeGoals, p.AwayGoals = home, away
	r.predictions[id] = p
	return nil
}

func (r memPredictionRepo) details(keep func(models.Prediction, models.Game) bool) []models.PredictionDetail {
	out := make([]models.PredictionDetail, 0)
	for _, p := range r.predictions {
		g := r.games[p.GameID]
		if !keep(p, g) {
			continue
		}
		out = append(out, models.PredictionDetail{
			Prediction:      p,
			HomeTeam:        g.HomeTeam,
			AwayTeam:        g.AwayTeam,
			GameStartTime:   g.StartTime,
			UserDisplayName: r.users[p.UserID].DisplayName,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memPredictionRepo) ListDetailsByGame(_ context.Context, gameID int) ([]models.PredictionDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.details(func(p models.Prediction, _ models.Game) bool { return p.GameID == gameID }), nil
}

func (r memPredictionRepo) ListDetailsByTournamentAndUser(_ context.Context, tournamentID, userID int) ([]models.PredictionDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.details(func(p models.Prediction, g models.Game) bool {
		return g.TournamentID == tournamentID && p.UserID == userID
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GameStartTime.Equal(out[j].GameStartTime) {
			return out[i].GameStartTime.After(out[j].GameStartTime)
		}
		return out[i].GameID > out[j].GameID
	})
	return out, nil
}

func (r memPredictionRepo) ListDetailsByGames(_ context.Context, tournamentID int, gameIDs []int) ([]models.PredictionDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[int]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}
	return r.details(func(p models.Prediction, g models.Game) bool {
		return wanted[p.GameID] && g.TournamentID == tournamentID
	}), nil
}

// TxManager without isolation; good enough for service tests.
type memTxManager struct{}

func (memTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// storage.FileUploader

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

var _ storage.FileUploader = (*memUploader)(nil)

func newMemUploader() *memUploader {
	return &memUploader{objects: map[string][]byte{}}
}

func (u *memUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// FootballDataProvider

type fakeProvider struct {
	mu           sync.Mutex
	competitions []footballapi.Competition
	matches      map[int][]footballapi.Match
	standings    []footballapi.StandingGroup
	err          error
	matchCalls   int
}

func (f *fakeProvider) GetCompetitions(context.Context) ([]footballapi.Competition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.competitions, nil
}

func (f *fakeProvider) GetMatches(_ context.Context, competitionID, _ int) ([]footballapi.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[competitionID], nil
}

func (f *fakeProvider) GetStandings(context.Context, int, int) ([]footballapi.StandingGroup, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.standings, nil
}

func (f *fakeProvider) Status() footballapi.Status {
	return footballapi.Status{Limit: intPtr(10), Remaining: intPtr(9)}
}
