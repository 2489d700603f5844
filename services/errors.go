package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed      = errors.New("validation failed")
	ErrInvalidGoals          = errors.New("goals must be non-negative")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrDisplayNameRequired   = errors.New("display name is required")
	ErrEmailRequired         = errors.New("email is required")
	ErrTournamentNameInvalid = errors.New("tournament name is required and must be at most 200 characters")
	ErrTeamNameInvalid       = errors.New("team names are required and must be at most 100 characters")
	ErrStartTimeRequired     = errors.New("start time is required")
	ErrUnsupportedImage      = errors.New("unsupported image content type")

	// Ошибки конфликтов
	ErrUserEmailConflict = errors.New("email address is already in use")
	// ErrPredictionConflict is transient: the client may retry the same request.
	ErrPredictionConflict = errors.New("prediction was modified concurrently, please retry")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGameNotFound       = errors.New("game not found")

	// Внешние зависимости
	ErrStorageNotConfigured   = errors.New("file storage is not configured")
	ErrFootballAPIUnavailable = errors.New("football data provider is unavailable")
)
