package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
)

func testAdmin() *model.Admin {
	return &model.Admin{
		ID:    uuid.New(),
		Email: "admin@taxoffice.gr",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "booking-api", 15*time.Minute, 7*24*time.Hour)
	admin := testAdmin()
	sessionID := uuid.New()

	access, err := svc.GenerateAccessToken(admin, sessionID)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	svc := NewJWTService("test-secret", "booking-api", 15*time.Minute, 7*24*time.Hour)
	admin := testAdmin()

	refresh, err := svc.GenerateRefreshToken(admin, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService("test-secret", "booking-api", -time.Minute, -time.Minute)
	admin := testAdmin()

	access, err := svc.GenerateAccessToken(admin, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuing := NewJWTService("secret-a", "booking-api", 15*time.Minute, time.Hour)
	verifying := NewJWTService("secret-b", "booking-api", 15*time.Minute, time.Hour)

	access, err := issuing.GenerateAccessToken(testAdmin(), uuid.New())
	require.NoError(t, err)

	_, err = verifying.ValidateAccessToken(access)
	assert.Error(t, err)
}
