package jwt

import (
	"testing"
	"time"

	"asha_gallery/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testAdmin = models.Admin{
	ID:       uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
	Username: "admin",
	Role:     models.RoleAdmin,
}

func TestNewToken_Verify(t *testing.T) {
	token, err := NewToken(testAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Verify(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, testAdmin.ID, claims.UserID)
	assert.Equal(t, testAdmin.Username, claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_Expired(t *testing.T) {
	token, err := NewToken(testAdmin, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Verify(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewToken(testAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = Verify(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := Verify("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeUnsafe(t *testing.T) {
	token, err := NewToken(testAdmin, testSecret, -time.Hour)
	require.NoError(t, err)

	// expired tokens still decode, that is the whole point
	claims := DecodeUnsafe(token)
	require.NotNil(t, claims)
	assert.Equal(t, testAdmin.ID, claims.UserID)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))

	assert.Nil(t, DecodeUnsafe("garbage"))
}
