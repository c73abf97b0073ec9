package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

const dateTimeLayout = "2006-01-02 15:04"

// Booker places a new appointment under the slot conflict check.
type Booker interface {
	Book(ctx context.Context, apt *model.Appointment, write func(ctx context.Context) error) (*model.AppointmentDetails, error)
}

type DoctorLookup interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type ServiceLookup interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

// Service handles public booking requests and their conversion into
// appointments.
type Service struct {
	requests repository.AppointmentRequestRepository
	patients repository.PatientRepository
	doctors  DoctorLookup
	services ServiceLookup
	booker   Booker
	location *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(
	requests repository.AppointmentRequestRepository,
	patients repository.PatientRepository,
	doctors DoctorLookup,
	services ServiceLookup,
	booker Booker,
	location *time.Location,
	logger *logger.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		requests: requests,
		patients: patients,
		doctors:  doctors,
		services: services,
		booker:   booker,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) CreateRequest(ctx context.Context, in model.CreateAppointmentRequestInput, clientIP string) (*model.AppointmentRequest, error) {
	details := map[string]string{}

	serviceID, err := uuid.Parse(in.Service)
	if err != nil {
		details["service"] = "Invalid service ID format"
	}
	var preferred *uuid.UUID
	if in.PreferredDoctor != "" {
		id, err := uuid.Parse(in.PreferredDoctor)
		if err != nil {
			details["preferredDoctor"] = "Invalid doctor ID format"
		} else {
			preferred = &id
		}
	}
	requestedDate, err := time.Parse("2006-01-02", in.RequestedDate)
	if err != nil {
		details["requestedDate"] = "Date must be in YYYY-MM-DD format"
	}
	if _, err := time.Parse("15:04", in.RequestedTime); err != nil || len(in.RequestedTime) != 5 {
		details["requestedTime"] = "Time must be in HH:MM format"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidation("Validation failed", details)
	}

	if _, err := s.services.GetService(ctx, serviceID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewReferenceNotFound(map[string]string{"service": "Service not found"})
		}
		return nil, fmt.Errorf("failed to resolve service: %w", err)
	}
	if preferred != nil {
		if _, err := s.doctors.GetDoctor(ctx, *preferred); err != nil {
			if isNotFound(err) {
				return nil, apperrors.NewReferenceNotFound(map[string]string{"preferredDoctor": "Doctor not found"})
			}
			return nil, fmt.Errorf("failed to resolve doctor: %w", err)
		}
	}

	req := &model.AppointmentRequest{
		ID:              uuid.New(),
		ServiceID:       serviceID,
		PreferredDoctor: preferred,
		RequestedDate:   requestedDate,
		RequestedTime:   in.RequestedTime,
		PatientInfo:     in.PatientInfo,
		Status:          model.RequestStatusPending,
		Source:          in.Source,
	}
	if req.Source == "" {
		req.Source = model.DefaultRequestSource
	}
	if clientIP != "" {
		req.ClientIP = &clientIP
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create appointment request: %w", err)
	}

	s.logger.Info("appointment request received",
		"request_id", req.ID.String(),
		"source", req.Source,
	)
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*model.AppointmentRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Appointment request", err)
		}
		return nil, fmt.Errorf("failed to get appointment request: %w", err)
	}
	return req, nil
}

// ListRequests returns one page of requests, newest first, and the total count.
func (s *Service) ListRequests(ctx context.Context, filters model.RequestFilters) ([]*model.AppointmentRequest, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperrors.NewValidation("Invalid status", map[string]string{"status": "Unknown request status"})
	}
	filters.Pagination = filters.Pagination.Normalize()

	requests, total, err := s.requests.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointment requests: %w", err)
	}
	return requests, total, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in model.UpdateRequestStatusInput, processedBy *uuid.UUID) (*model.AppointmentRequest, error) {
	if !in.Status.Valid() {
		return nil, apperrors.NewValidation("Invalid status", map[string]string{"status": "Unknown request status"})
	}

	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req.Status = in.Status
	if in.AdminNotes != nil {
		req.AdminNotes = *in.AdminNotes
	}
	req.ProcessedBy = processedBy
	req.ProcessedAt = &now

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update appointment request: %w", err)
	}

	s.logger.Info("appointment request status updated",
		"request_id", id.String(),
		"status", string(in.Status),
	)
	return req, nil
}

// Stats counts requests per status.
func (s *Service) Stats(ctx context.Context) ([]model.RequestStat, error) {
	stats, err := s.requests.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment request stats: %w", err)
	}
	return stats, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || apperrors.HasCode(err, apperrors.ErrNotFound)
}
