package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type Service struct {
	repo   repository.PatientRepository
	logger *logger.Logger
}

func NewService(repo repository.PatientRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreatePatient(ctx context.Context, in model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		ID:             uuid.New(),
		Name:           in.Name,
		DocumentNumber: in.DocumentNumber,
		DocumentType:   in.DocumentType,
		Email:          in.Email,
		Phone:          in.Phone,
		DateOfBirth:    in.DateOfBirth,
		Status:         in.Status,
	}
	if patient.DocumentType == "" {
		patient.DocumentType = model.DocumentTypeDNI
	}
	if patient.Status == "" {
		patient.Status = model.PatientStatusActive
	}
	if in.Address != nil {
		patient.Address = model.NewJSONB(*in.Address)
	}
	if in.MedicalHistory != nil {
		patient.MedicalHistory = model.NewJSONB(*in.MedicalHistory)
	}
	if in.InsuranceInfo != nil {
		patient.InsuranceInfo = model.NewJSONB(*in.InsuranceInfo)
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, s.writeError(err, "failed to create patient")
	}

	s.logger.Info("patient created", "patient_id", patient.ID.String())
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error) {
	patient, err := s.repo.GetByDocument(ctx, documentNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		patient.Name = *in.Name
	}
	if in.DocumentNumber != nil {
		patient.DocumentNumber = *in.DocumentNumber
	}
	if in.DocumentType != nil {
		patient.DocumentType = *in.DocumentType
	}
	if in.Email != nil {
		patient.Email = *in.Email
	}
	if in.Phone != nil {
		patient.Phone = *in.Phone
	}
	if in.DateOfBirth != nil {
		patient.DateOfBirth = in.DateOfBirth
	}
	if in.Address != nil {
		patient.Address = model.NewJSONB(*in.Address)
	}
	if in.MedicalHistory != nil {
		patient.MedicalHistory = model.NewJSONB(*in.MedicalHistory)
	}
	if in.InsuranceInfo != nil {
		patient.InsuranceInfo = model.NewJSONB(*in.InsuranceInfo)
	}
	if in.Status != nil {
		patient.Status = *in.Status
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, s.writeError(err, "failed to update patient")
	}
	return patient, nil
}

// DeletePatient is refused while appointments still reference the patient.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return apperrors.NewInvalidState("Patient has appointments and cannot be deleted")
		}
		return s.writeError(err, "failed to delete patient")
	}

	s.logger.Info("patient deleted", "patient_id", id.String())
	return nil
}

// ListPatients searches name, document, email and phone.
func (s *Service) ListPatients(ctx context.Context, search string, page model.Pagination) ([]*model.Patient, int, error) {
	patients, total, err := s.repo.List(ctx, search, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (s *Service) writeError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("Patient", err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewValidation("Validation failed", map[string]string{
			"documentNumber": "A patient with this document number already exists",
		})
	}
	return fmt.Errorf("%s: %w", msg, err)
}
