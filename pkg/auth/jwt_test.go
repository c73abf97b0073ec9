package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{ID: uuid.New(), Email: "doc@clinic.test", Role: model.RoleDoctor}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.Equal(t, "doc@clinic.test", claims.Email)
}

func TestJWTRejects(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	token, err := NewJWTService("secret-a", time.Hour).GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("secret-a", time.Hour).(*hmacJWT)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = expired.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
