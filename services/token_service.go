package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
)

// Имена JWT claims, общие для выдачи токена и middleware.
const (
	ClaimUserID = "user_id"
	ClaimRole   = "role"
	ClaimName   = "name"
)

type TokenService interface {
	Issue(user *models.User) (string, error)
	Parse(tokenString string) (jwt.MapClaims, error)
}

type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock clockwork.Clock) TokenService {
	return &jwtTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}
}

func (s *jwtTokenService) Issue(user *models.User) (string, error) {
	now := s.clock.Now().UTC()
	claims := jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimRole:   string(user.Role),
		ClaimName:   user.DisplayName,
		"exp":       now.Add(s.ttl).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtTokenService) Parse(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrAuthenticationFailed)
	}

	// Срок действия проверяем по своим часам, чтобы тесты могли управлять временем.
	now := s.clock.Now().UTC().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, fmt.Errorf("%w: token expired", ErrAuthenticationFailed)
	}
	if _, ok := claims[ClaimUserID]; !ok {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, errors.New("missing user_id claim"))
	}
	return claims, nil
}
