package catalog

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
)

// Service manages the clinic's treatment catalog.
type Service struct {
	repo   repository.ServiceRepository
	cache  *cache.Cache
	logger *logger.Logger
}

func NewService(repo repository.ServiceRepository, cacheTTL, cleanupInterval time.Duration, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache.New(cacheTTL, cleanupInterval),
		logger: logger,
	}
}

func (s *Service) CreateService(ctx context.Context, in model.ServiceInput) (*model.Service, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	svc := &model.Service{ID: uuid.New(), Active: true}
	apply(svc, in)

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

// GetService is used on every booking, so hits are cached.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	if cached, found := s.cache.Get(id.String()); found {
		return cached.(*model.Service), nil
	}

	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	s.cache.Set(id.String(), svc, cache.DefaultExpiration)
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, in model.ServiceInput) (*model.Service, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *svc
	apply(&updated, in)

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.cache.Delete(id.String())
	return &updated, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("Service", err)
		case errors.Is(err, repository.ErrInUse):
			return apperrors.NewInvalidState("Service is referenced by appointments")
		}
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.cache.Delete(id.String())
	return nil
}

func (s *Service) ListServices(ctx context.Context, category model.ServiceCategory, activeOnly bool) ([]*model.Service, error) {
	if category != "" && !category.Valid() {
		return nil, apperrors.NewValidation("Invalid category", map[string]string{"category": "Unknown service category"})
	}

	services, err := s.repo.List(ctx, category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func validateInput(in model.ServiceInput) error {
	details := map[string]string{}
	if in.Name == "" {
		details["name"] = "Name is required"
	}
	if in.Description == "" {
		details["description"] = "Description is required"
	}
	if !in.Category.Valid() {
		details["category"] = "Unknown service category"
	}
	if in.Duration < 0 {
		details["duration"] = "Duration must be positive"
	}
	if in.Price.IsNegative() {
		details["price"] = "Price cannot be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidation("Validation failed", details)
	}
	return nil
}

func apply(svc *model.Service, in model.ServiceInput) {
	svc.Name = in.Name
	svc.Description = in.Description
	svc.Duration = in.Duration
	if svc.Duration == 0 {
		svc.Duration = model.DefaultAppointmentDuration
	}
	svc.Price = in.Price
	svc.Category = in.Category
	if in.Active != nil {
		svc.Active = *in.Active
	}
	svc.RequiredEquipment = in.RequiredEquipment
	svc.Notes = in.Notes
}
