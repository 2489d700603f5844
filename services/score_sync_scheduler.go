package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

const scoreSyncJobName = "score-sync"

// ScoreSyncScheduler периодически подтягивает результаты завершённых матчей
// для всех турниров, привязанных к внешнему API.
type ScoreSyncScheduler struct {
	syncService FootballSyncService
	interval    time.Duration
	timeout     time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger

	scheduler gocron.Scheduler
}

func NewScoreSyncScheduler(syncService FootballSyncService, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *ScoreSyncScheduler {
	timeout := interval
	if timeout <= 0 || timeout > 5*time.Minute {
		timeout = 5 * time.Minute
	}
	return &ScoreSyncScheduler{
		syncService: syncService,
		interval:    interval,
		timeout:     timeout,
		clock:       clock,
		logger:      logger,
	}
}

// Enabled is false when the interval is zero.
func (s *ScoreSyncScheduler) Enabled() bool {
	return s.interval > 0
}

// Start регистрирует задачу и запускает планировщик. ctx ограничивает время жизни запусков.
func (s *ScoreSyncScheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("score sync scheduler disabled")
		return nil
	}

	sched, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.RunOnce(ctx) }),
		gocron.WithName(scoreSyncJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to register %s job: %w", scoreSyncJobName, err)
	}

	sched.Start()
	s.scheduler = sched
	s.logger.Info("score sync scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// RunOnce выполняет одну синхронизацию. Ошибки только логируются.
func (s *ScoreSyncScheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.clock.Now()
	updated, err := s.syncService.SyncAllScores(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled score sync failed",
			slog.Int("games_updated", updated),
			slog.Any("error", err),
		)
		return updated
	}
	s.logger.InfoContext(ctx, "scheduled score sync finished",
		slog.Int("games_updated", updated),
		slog.Duration("took", s.clock.Since(started)),
	)
	return updated
}

func (s *ScoreSyncScheduler) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}
