package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestService(t *testing.T, now *time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACService(testAuthConfig(), func() time.Time { return *now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_Validation(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)

	cfg = testAuthConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)

	_, err = NewJWTService(testAuthConfig())
	assert.NoError(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &now)
	userID := uuid.New()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Errors(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &now)
	ctx := context.Background()
	userID := uuid.New()

	access, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	other, err := newHMACService(config.AuthConfig{
		JWTSecret:                   "another-secret-that-is-32-chars-long!!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	}, time.Now)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, userID)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": userID.String(), "type": "access"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	now = now.Add(2 * time.Hour)
	_, err = svc.ValidateToken(ctx, access)
	assert.ErrorIs(t, err, ErrExpiredToken)

	now = now.Add(48 * time.Hour)
	_, err = svc.ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestValidateToken_ClockSkew(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &now)
	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Minute)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err, "expiry within the allowed skew is accepted")
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, h.Compare(hash, "correct horse battery"))
	assert.Error(t, h.Compare(hash, "wrong password"))

	assert.Equal(t, 10, NewBcryptHasher(0).cost)
}
