package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/platform/logger"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	minSecretLength = 32
	clockSkew       = 2 * time.Minute
)

// JWTService issues and validates access and refresh tokens.
type JWTService interface {
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

type tokenClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

type hmacJWTService struct {
	signingKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	now             func() time.Time
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates an HMAC-SHA256 token service.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACService(cfg, time.Now)
}

func newHMACService(cfg config.AuthConfig, now func() time.Time) (*hmacJWTService, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if cfg.TokenLifetimeMinutes <= 0 || cfg.RefreshTokenLifetimeMinutes <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &hmacJWTService{
		signingKey:      []byte(cfg.JWTSecret),
		accessLifetime:  time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		now:             now,
	}, nil
}

// GenerateToken creates a signed access token.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, tokenTypeAccess, s.accessLifetime)
}

// GenerateRefreshToken creates a signed refresh token.
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, tokenTypeRefresh, s.refreshLifetime)
}

// ValidateToken validates an access token.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, tokenTypeAccess)
	switch {
	case err == nil, errors.Is(err, ErrWrongTokenType):
		return claims, err
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return nil, ErrTokenNotYetValid
	default:
		return nil, ErrInvalidToken
	}
}

// ValidateRefreshToken validates a refresh token.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(ctx, tokenString, tokenTypeRefresh)
	switch {
	case err == nil, errors.Is(err, ErrWrongTokenType):
		return claims, err
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredRefreshToken
	default:
		return nil, ErrInvalidRefreshToken
	}
}

func (s *hmacJWTService) sign(ctx context.Context, userID uuid.UUID, tokenType string, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"user_id", userID,
			"token_type", tokenType)
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) parse(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.now()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token validation failed", "error", err, "token_type", wantType)
		return nil, err
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		log.Debug("token validation failed: invalid claims", "token_type", wantType)
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			"expected", wantType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
