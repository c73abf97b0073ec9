package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/security"
)

// Service manages clinic accounts. Doctors are served from a short-lived
// cache because every booking resolves one.
type Service struct {
	repo    repository.UserRepository
	hasher  security.PasswordHasher
	doctors *cache.Cache
	logger  *logger.Logger
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, cacheTTL, cleanupInterval time.Duration, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		doctors: cache.New(cacheTTL, cleanupInterval),
		logger:  logger,
	}
}

func (s *Service) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleStaff
	}
	if details := in.Validate(); details != nil {
		return nil, apperrors.NewValidation("Validation failed", details)
	}

	user := &model.User{ID: uuid.New(), Active: true}
	if err := s.apply(user, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewValidation("Validation failed", map[string]string{
				"email": "Email is already registered",
			})
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID.String(), "role", string(user.Role))
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces the user's fields. The password is only changed when
// a new one is supplied.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in model.UserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Role == "" {
		in.Role = user.Role
	}
	details := in.Validate()
	if in.Role == model.RoleAdmin && in.Password == "" && user.PasswordHash != nil {
		delete(details, "password")
		if len(details) == 0 {
			details = nil
		}
	}
	if details != nil {
		return nil, apperrors.NewValidation("Validation failed", details)
	}

	if err := s.apply(user, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewValidation("Validation failed", map[string]string{
				"email": "Email is already registered",
			})
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.doctors.Delete(id.String())
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("User", err)
		case errors.Is(err, repository.ErrInUse):
			return apperrors.NewInvalidState("User has appointments and cannot be deleted")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.doctors.Delete(id.String())
	return nil
}

// ResetPassword replaces the password of the account registered under email.
func (s *Service) ResetPassword(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = &hash

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("password reset", "user_id", user.ID.String())
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, role model.Role, activeOnly bool) ([]*model.User, error) {
	users, err := s.repo.List(ctx, role, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListDoctors returns the active doctors shown on the public site.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.User, error) {
	return s.ListUsers(ctx, model.RoleDoctor, true)
}

// GetDoctor resolves a user that must carry the doctor role.
func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if cached, found := s.doctors.Get(id.String()); found {
		return cached.(*model.User), nil
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if user.Role != model.RoleDoctor {
		return nil, apperrors.NewNotFound("Doctor", nil)
	}

	s.doctors.Set(id.String(), user, cache.DefaultExpiration)
	return user, nil
}

func (s *Service) apply(user *model.User, in model.UserInput) error {
	if in.Password != "" {
		hash, err := s.hash(in.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = &hash
	}

	user.Email = in.Email
	user.Name = in.Name
	user.Phone = in.Phone
	user.Role = in.Role
	if in.Active != nil {
		user.Active = *in.Active
	}
	user.Photo = in.Photo
	user.Specialization = in.Specialization
	user.PrimarySpecialization = optional(in.PrimarySpecialization)
	user.LicenseNumber = optional(in.LicenseNumber)
	user.Experience = in.Experience
	if in.Availability != nil {
		user.Availability = model.NewJSONB(in.Availability)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return "", apperrors.NewValidation("Validation failed", map[string]string{
				"password": fmt.Sprintf("Password must be at least %d characters", security.MinPasswordLen),
			})
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
