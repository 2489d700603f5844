package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string
	JWTSecretKey   string
	JWTTTL         time.Duration
	ServerPort     int
	LogLevel       slog.Level
	MigrationsPath string
	CORSOrigins    []string

	FootballAPIBaseURL       string
	FootballAPIKey           string
	FootballAPIRequestsLimit int
	ScoreSyncInterval        time.Duration

	AdminEmail    string
	AdminPassword string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку отсутствия .env не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	jwtTTL, err := durationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if jwtTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", jwtTTL)
	}

	syncInterval, err := durationEnv("SCORE_SYNC_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	if syncInterval < 0 {
		return nil, fmt.Errorf("SCORE_SYNC_INTERVAL must not be negative, got %s", syncInterval)
	}

	requestsLimit, err := intEnv("FOOTBALL_API_REQUESTS_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(stringEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		JWTSecretKey:   jwtKey,
		JWTTTL:         jwtTTL,
		ServerPort:     port,
		LogLevel:       level,
		MigrationsPath: stringEnv("MIGRATIONS_PATH", "migrations"),
		CORSOrigins:    splitList(stringEnv("CORS_ORIGINS", "http://localhost:5173")),

		FootballAPIBaseURL:       stringEnv("FOOTBALL_API_BASE_URL", "https://api.football-data.org/v4"),
		FootballAPIKey:           os.Getenv("FOOTBALL_API_KEY"),
		FootballAPIRequestsLimit: requestsLimit,
		ScoreSyncInterval:        syncInterval,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

// durationEnv принимает формат time.ParseDuration; "0" отключает.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if raw == "0" {
		return 0, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
