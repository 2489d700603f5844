package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength    = 6
	maxDisplayNameLength = 100
)

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult возвращается клиенту после регистрации и входа.
type AuthResult struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	// EnsureAdmin создаёт администратора, если пользователя с таким email ещё нет.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo     repositories.UserRepository
	tokenService TokenService
	bcryptCost   int
	logger       *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, tokenService TokenService, bcryptCost int, logger *slog.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:     userRepo,
		tokenService: tokenService,
		bcryptCost:   bcryptCost,
		logger:       logger,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if !validName(displayName, maxDisplayNameLength) {
		return nil, ErrDisplayNameRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.createUser(ctx, email, input.Password, displayName, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.authResult(user)
}

func (s *authService) createUser(ctx context.Context, email, password, displayName string, role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return s.authResult(user)
}

func (s *authService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokenService.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Email: user.Email, DisplayName: user.DisplayName}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.logger.InfoContext(ctx, "admin credentials not configured, skipping admin seed")
		return nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	user, err := s.createUser(ctx, email, password, "Admin", models.RoleAdmin)
	if err != nil {
		if errors.Is(err, ErrUserEmailConflict) {
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "admin user created", slog.Int("user_id", user.ID), slog.String("email", user.Email))
	return nil
}
