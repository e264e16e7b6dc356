package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

func newAuthServiceForTest() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{
		Secret:            "test-secret",
		Issuer:            "clinic-scheduling-api",
		AccessTokenExpiry: time.Hour,
	})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newAuthServiceForTest()

	token, expiresAt, err := svc.IssueToken("user-1", models.RoleTherapist, "t@example.com", "Dr. Rivera")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTherapist, claims.Role)
}

func TestAuthServiceRejectsForeignSecret(t *testing.T) {
	other := NewAuthService(nil, AuthConfig{Secret: "other", Issuer: "clinic-scheduling-api"})
	token, _, err := other.IssueToken("user-1", models.RoleAdmin, "", "")
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newAuthServiceForTest()
	svc.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, _, err := svc.IssueToken("user-1", models.RoleClient, "", "")
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)

	assert.Error(t, err)
}

func TestAuthServiceRejectsUnknownRole(t *testing.T) {
	svc := newAuthServiceForTest()
	claims := &models.JWTClaims{
		UserID: "user-1",
		Role:   models.UserRole("JANITOR"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinic-scheduling-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)

	assert.Error(t, err)
}

func TestAuthServiceRejectsWrongIssuer(t *testing.T) {
	foreign := NewAuthService(nil, AuthConfig{Secret: "test-secret", Issuer: "someone-else"})
	token, _, err := foreign.IssueToken("user-1", models.RoleAdmin, "", "")
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)

	assert.Error(t, err)
}
