package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/mocks"
	"github.com/jwalitptl/dental-api/pkg/auth"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

func newUser(t *testing.T, active bool) *model.User {
	t.Helper()
	hash, err := security.NewBcryptHasher(bcrypt.MinCost).Hash("correct-horse")
	require.NoError(t, err)
	return &model.User{
		ID:           uuid.New(),
		Email:        "admin@clinic.test",
		PasswordHash: &hash,
		Role:         model.RoleAdmin,
		Active:       active,
	}
}

func newTestService(repo *mocks.UserRepository) *Service {
	return NewService(repo, auth.NewJWTService("secret", time.Hour), security.NewBcryptHasher(bcrypt.MinCost), logger.Nop())
}

func TestLogin(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := newTestService(repo)
	user := newUser(t, true)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	resp, err := svc.Login(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user, resp.User)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*mocks.UserRepository)
		password string
	}{
		{
			name: "unknown email",
			setup: func(repo *mocks.UserRepository) {
				repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			password: "correct-horse",
		},
		{
			name: "wrong password",
			setup: func(repo *mocks.UserRepository) {
				repo.On("GetByEmail", mock.Anything, mock.Anything).Return(newUser(t, true), nil)
			},
			password: "battery-staple",
		},
		{
			name: "inactive user",
			setup: func(repo *mocks.UserRepository) {
				repo.On("GetByEmail", mock.Anything, mock.Anything).Return(newUser(t, false), nil)
			},
			password: "correct-horse",
		},
		{
			name: "no password set",
			setup: func(repo *mocks.UserRepository) {
				repo.On("GetByEmail", mock.Anything, mock.Anything).Return(&model.User{ID: uuid.New(), Active: true}, nil)
			},
			password: "correct-horse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tt.setup(repo)

			_, err := newTestService(repo).Login(context.Background(), "admin@clinic.test", tt.password)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := newTestService(new(mocks.UserRepository)).ValidateToken(context.Background(), "garbage")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))
}
