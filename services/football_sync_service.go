package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/Dosada05/prediction-league/footballapi"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	searchSeasonsBack = 4
	syncConcurrency   = 4
)

// FootballDataProvider is the subset of the football-data client used for import and sync.
type FootballDataProvider interface {
	GetCompetitions(ctx context.Context) ([]footballapi.Competition, error)
	GetMatches(ctx context.Context, competitionID, season int) ([]footballapi.Match, error)
	GetStandings(ctx context.Context, competitionID, season int) ([]footballapi.StandingGroup, error)
	Status() footballapi.Status
}

type LeagueSearchResult struct {
	LeagueID int     `json:"league_id"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Type     string  `json:"type"`
	Logo     *string `json:"logo,omitempty"`
	Seasons  []int   `json:"seasons"`
}

type ImportLeagueInput struct {
	LeagueID int    `json:"league_id"`
	Season   int    `json:"season"`
	Name     string `json:"name"`
}

type ImportLeagueResult struct {
	Tournament    *models.Tournament `json:"tournament"`
	GamesImported int                `json:"games_imported"`
}

type CompetitionStandings struct {
	Groups []StandingGroupView `json:"groups"`
}

type StandingGroupView struct {
	Stage string            `json:"stage"`
	Group *string           `json:"group,omitempty"`
	Table []StandingRowView `json:"table"`
}

type StandingRowView struct {
	Position       int     `json:"position"`
	TeamName       string  `json:"team_name"`
	TeamCrest      *string `json:"team_crest,omitempty"`
	PlayedGames    int     `json:"played_games"`
	Won            int     `json:"won"`
	Draw           int     `json:"draw"`
	Lost           int     `json:"lost"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	Points         int     `json:"points"`
}

type FootballSyncService interface {
	SearchLeagues(ctx context.Context, query string) ([]LeagueSearchResult, error)
	ImportLeague(ctx context.Context, input ImportLeagueInput) (*ImportLeagueResult, error)
	SyncScores(ctx context.Context, tournamentID int) (int, error)
	SyncAllScores(ctx context.Context) (int, error)
	GetCompetitionStandings(ctx context.Context, tournamentID int) (*CompetitionStandings, error)
	Status() footballapi.Status
}

type footballSyncService struct {
	provider       FootballDataProvider
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	txManager      repositories.TxManager
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewFootballSyncService(
	provider FootballDataProvider,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	txManager repositories.TxManager,
	clock clockwork.Clock,
	logger *slog.Logger,
) FootballSyncService {
	return &footballSyncService{
		provider:       provider,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		txManager:      txManager,
		clock:          clock,
		logger:         logger,
	}
}

func providerError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFootballAPIUnavailable, err)
}

func (s *footballSyncService) Status() footballapi.Status {
	return s.provider.Status()
}

func (s *footballSyncService) SearchLeagues(ctx context.Context, query string) ([]LeagueSearchResult, error) {
	competitions, err := s.provider.GetCompetitions(ctx)
	if err != nil {
		return nil, providerError(err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	fallbackYear := s.clock.Now().UTC().Year()

	results := make([]LeagueSearchResult, 0, len(competitions))
	for _, c := range competitions {
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Area.Name), query) {
			continue
		}
		results = append(results, LeagueSearchResult{
			LeagueID: c.ID,
			Name:     c.Name,
			Country:  c.Area.Name,
			Type:     c.Type,
			Logo:     c.Emblem,
			Seasons:  recentSeasons(currentSeasonYear(c.CurrentSeason, fallbackYear)),
		})
	}
	return results, nil
}

// currentSeasonYear берёт год из startDate ("2024-08-16"), иначе fallback.
func currentSeasonYear(season *footballapi.Season, fallback int) int {
	if season == nil || len(season.StartDate) < 4 {
		return fallback
	}
	year, err := strconv.Atoi(season.StartDate[:4])
	if err != nil {
		return fallback
	}
	return year
}

func recentSeasons(current int) []int {
	seasons := make([]int, searchSeasonsBack)
	for i := range seasons {
		seasons[i] = current - i
	}
	return seasons
}

func (s *footballSyncService) ImportLeague(ctx context.Context, input ImportLeagueInput) (*ImportLeagueResult, error) {
	if input.LeagueID <= 0 || input.Season <= 0 {
		return nil, fmt.Errorf("%w: league_id and season are required", ErrValidationFailed)
	}

	var (
		matches     []footballapi.Match
		competition *footballapi.Competition
		existing    []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.provider.GetMatches(gctx, input.LeagueID, input.Season)
		if err != nil {
			return providerError(err)
		}
		return nil
	})
	g.Go(func() error {
		// Эмблема необязательна: ошибка здесь не должна срывать импорт.
		competitions, err := s.provider.GetCompetitions(gctx)
		if err != nil {
			s.logger.WarnContext(gctx, "failed to load competitions for emblem",
				slog.Int("league_id", input.LeagueID), slog.Any("error", err))
			return nil
		}
		for i := range competitions {
			if competitions[i].ID == input.LeagueID {
				competition = &competitions[i]
				break
			}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		existing, err = s.gameRepo.ListExternalFixtureIDs(gctx)
		if err != nil {
			return fmt.Errorf("failed to load imported fixture ids: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" && competition != nil {
		name = competition.Name
	}
	name, err := normalizeTournamentName(name)
	if err != nil {
		return nil, err
	}

	leagueID, season := input.LeagueID, input.Season
	tournament := &models.Tournament{
		Name:             name,
		Slug:             slug.Make(name),
		ExternalLeagueID: &leagueID,
		ExternalSeason:   &season,
	}
	if competition != nil {
		tournament.EmblemURL = competition.Emblem
	}

	games := newGamesFromMatches(matches, existing)

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return fmt.Errorf("failed to create imported tournament: %w", err)
		}
		for i := range games {
			games[i].TournamentID = tournament.ID
			if err := s.gameRepo.Create(ctx, exec, &games[i]); err != nil {
				return fmt.Errorf("failed to import fixture %d: %w", *games[i].ExternalFixtureID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "league imported",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("league_id", leagueID),
		slog.Int("season", season),
		slog.Int("games_imported", len(games)),
	)
	return &ImportLeagueResult{Tournament: tournament, GamesImported: len(games)}, nil
}

// newGamesFromMatches пропускает уже импортированные матчи и матчи с неизвестными командами.
func newGamesFromMatches(matches []footballapi.Match, existingFixtureIDs []int) []models.Game {
	seen := make(map[int]struct{}, len(existingFixtureIDs)+len(matches))
	for _, id := range existingFixtureIDs {
		seen[id] = struct{}{}
	}

	games := make([]models.Game, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		home, away := m.HomeTeam.DisplayName(), m.AwayTeam.DisplayName()
		if home == "" || away == "" {
			continue
		}
		seen[m.ID] = struct{}{}

		fixtureID := m.ID
		games = append(games, models.Game{
			HomeTeam:          home,
			AwayTeam:          away,
			StartTime:         m.UTCDate.UTC(),
			ExternalFixtureID: &fixtureID,
			HomeCrestURL:      m.HomeTeam.Crest,
			AwayCrestURL:      m.AwayTeam.Crest,
		})
	}
	return games
}

func (s *footballSyncService) SyncScores(ctx context.Context, tournamentID int) (int, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if !tournament.IsLinked() {
		return 0, nil
	}
	return s.syncTournament(ctx, tournament)
}

func (s *footballSyncService) syncTournament(ctx context.Context, tournament *models.Tournament) (int, error) {
	matches, err := s.provider.GetMatches(ctx, *tournament.ExternalLeagueID, *tournament.ExternalSeason)
	if err != nil {
		return 0, providerError(err)
	}

	finished := make(map[int]footballapi.Goals)
	for _, m := range matches {
		if m.Status != footballapi.MatchStatusFinished {
			continue
		}
		if m.Score.FullTime.Home == nil || m.Score.FullTime.Away == nil {
			continue
		}
		finished[m.ID] = m.Score.FullTime
	}
	if len(finished) == 0 {
		return 0, nil
	}

	games, err := s.gameRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list games for tournament %d: %w", tournament.ID, err)
	}

	now := s.clock.Now().UTC()
	updated := 0
	for _, g := range games {
		if g.ExternalFixtureID == nil {
			continue
		}
		score, ok := finished[*g.ExternalFixtureID]
		if !ok {
			continue
		}
		// Результат ставится только после локального начала матча, как и в GameService.SetResult.
		if !g.HasStarted(now) {
			s.logger.WarnContext(ctx, "finished fixture has a future local kickoff, result skipped",
				slog.Int("game_id", g.ID),
				slog.Int("fixture_id", *g.ExternalFixtureID),
				slog.Time("start_time", g.StartTime),
			)
			continue
		}
		home, away := *score.Home, *score.Away
		if g.IsFinished && g.HasResult() && *g.HomeGoals == home && *g.AwayGoals == away {
			continue
		}
		if err := s.gameRepo.SetResult(ctx, g.ID, home, away); err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				continue
			}
			return updated, fmt.Errorf("failed to store result for game %d: %w", g.ID, err)
		}
		updated++
	}

	if updated > 0 {
		s.logger.InfoContext(ctx, "scores synced",
			slog.Int("tournament_id", tournament.ID),
			slog.Int("games_updated", updated),
		)
	}
	return updated, nil
}

// SyncAllScores синхронизирует все привязанные турниры, не более syncConcurrency одновременно.
// Ошибка одного турнира не останавливает остальные.
func (s *footballSyncService) SyncAllScores(ctx context.Context) (int, error) {
	tournaments, err := s.tournamentRepo.ListLinked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list linked tournaments: %w", err)
	}

	var (
		mu    sync.Mutex
		total int
		errs  []error
		g     errgroup.Group
	)
	g.SetLimit(syncConcurrency)

	for i := range tournaments {
		t := &tournaments[i]
		g.Go(func() error {
			n, err := s.syncTournament(ctx, t)
			mu.Lock()
			defer mu.Unlock()
			total += n
			if err != nil {
				errs = append(errs, fmt.Errorf("tournament %d: %w", t.ID, err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return total, errors.Join(errs...)
}

func (s *footballSyncService) GetCompetitionStandings(ctx context.Context, tournamentID int) (*CompetitionStandings, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if !tournament.IsLinked() {
		return nil, nil
	}

	groups, err := s.provider.GetStandings(ctx, *tournament.ExternalLeagueID, *tournament.ExternalSeason)
	if err != nil {
		return nil, providerError(err)
	}

	result := &CompetitionStandings{Groups: make([]StandingGroupView, 0, len(groups))}
	for _, group := range groups {
		// HOME/AWAY таблицы дублируют общую.
		if group.Type != "" && group.Type != "TOTAL" {
			continue
		}
		view := StandingGroupView{
			Stage: group.Stage,
			Group: group.Group,
			Table: make([]StandingRowView, 0, len(group.Table)),
		}
		for _, row := range group.Table {
			view.Table = append(view.Table, StandingRowView{
				Position:       row.Position,
				TeamName:       row.Team.DisplayName(),
				TeamCrest:      row.Team.Crest,
				PlayedGames:    row.PlayedGames,
				Won:            row.Won,
				Draw:           row.Draw,
				Lost:           row.Lost,
				GoalsFor:       row.GoalsFor,
				GoalsAgainst:   row.GoalsAgainst,
				GoalDifference: row.GoalDifference,
				Points:         row.Points,
			})
		}
		result.Groups = append(result.Groups, view)
	}
	return result, nil
}
