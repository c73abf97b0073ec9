package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/auth"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		logger:   logger,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	if err := s.hasher.Compare(*user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", "user_id", user.ID.String())
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	if !user.Active {
		return nil, apperrors.Unauthorized(model.ErrInactiveUser)
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID.String(), "role", string(user.Role))
	return &model.TokenResponse{Token: token, User: user}, nil
}

func (s *Service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}
