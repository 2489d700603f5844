package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/prediction-league/config"
	"github.com/Dosada05/prediction-league/db"
	"github.com/Dosada05/prediction-league/footballapi"
	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/repositories"
	api "github.com/Dosada05/prediction-league/routes"
	"github.com/Dosada05/prediction-league/services"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	clock := clockwork.NewRealClock()

	// Инициализация загрузчика файлов (Cloudflare R2); без него загрузка эмблем отключена
	var uploader storage.FileUploader
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Config, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, emblem uploads are disabled")
	}

	footballClient := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:           cfg.FootballAPIBaseURL,
		APIKey:            cfg.FootballAPIKey,
		RequestsPerMinute: cfg.FootballAPIRequestsLimit,
		Timeout:           15 * time.Second,
	}, footballapi.NewStatusStore(), logger)

	// Инициализация сервисов
	tokenService := services.NewTokenService(cfg.JWTSecretKey, cfg.JWTTTL, clock)
	authService := services.NewAuthService(userRepo, tokenService, 0, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, uploader, logger)
	gameService := services.NewGameService(gameRepo, tournamentRepo, clock)
	predictionService := services.NewPredictionService(predictionRepo, gameRepo, userRepo, clock, logger)
	standingsService := services.NewStandingsService(gameRepo, predictionRepo)
	syncService := services.NewFootballSyncService(footballClient, tournamentRepo, gameRepo, txManager, clock, logger)
	logger.Info("services initialized")

	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Запуск планировщика синхронизации счетов
	scheduler := services.NewScoreSyncScheduler(syncService, cfg.ScoreSyncInterval, clock, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to stop score sync scheduler", slog.Any("error", err))
		}
	}()

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Tournaments: handlers.NewTournamentHandler(tournamentService),
		Games:       handlers.NewGameHandler(gameService),
		Predictions: handlers.NewPredictionHandler(predictionService),
		Standings:   handlers.NewStandingsHandler(standingsService),
		Football:    handlers.NewFootballHandler(syncService),
	}, tokenService, cfg.CORSOrigins, logger)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := newServer(cfg.ServerPort, router, logger)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// WriteTimeout сервера всегда больше routes.RequestTimeout.
func newServer(port int, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: api.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
