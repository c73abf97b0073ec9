package medical

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

type Service struct {
	repo   repository.MedicalRecordRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.MedicalRecordRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) CreateMedicalRecord(ctx context.Context, in model.MedicalRecordInput) (*model.MedicalRecord, error) {
	record := &model.MedicalRecord{ID: uuid.New(), Status: model.RecordStatusActive}
	if err := s.apply(record, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, s.writeError(err, "failed to create medical record")
	}

	s.logger.Info("medical record created",
		"record_id", record.ID.String(),
		"patient_id", record.PatientID.String(),
	)
	return record, nil
}

func (s *Service) GetMedicalRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Medical record", err)
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return record, nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, id uuid.UUID, in model.MedicalRecordInput) (*model.MedicalRecord, error) {
	record, err := s.GetMedicalRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(record, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, s.writeError(err, "failed to update medical record")
	}
	return record, nil
}

func (s *Service) DeleteMedicalRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(err, "failed to delete medical record")
	}
	return nil
}

func (s *Service) ListMedicalRecords(ctx context.Context, filters model.MedicalRecordFilters) ([]*model.MedicalRecord, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (s *Service) apply(record *model.MedicalRecord, in model.MedicalRecordInput) error {
	details := map[string]string{}
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		details["patientId"] = "Invalid patient ID format"
	}
	doctorID, err := uuid.Parse(in.DoctorID)
	if err != nil {
		details["doctorId"] = "Invalid doctor ID format"
	}
	var appointmentID *uuid.UUID
	if in.AppointmentID != "" {
		id, err := uuid.Parse(in.AppointmentID)
		if err != nil {
			details["appointmentId"] = "Invalid appointment ID format"
		} else {
			appointmentID = &id
		}
	}
	if in.Diagnosis == "" {
		details["diagnosis"] = "Diagnosis is required"
	}
	if in.Treatment == "" {
		details["treatment"] = "Treatment is required"
	}
	if len(details) > 0 {
		return apperrors.NewValidation("Validation failed", details)
	}

	record.PatientID = patientID
	record.DoctorID = doctorID
	record.AppointmentID = appointmentID
	record.Date = s.now().UTC()
	if in.Date != nil {
		record.Date = in.Date.UTC()
	}
	record.Diagnosis = in.Diagnosis
	record.Treatment = in.Treatment
	record.Symptoms = in.Symptoms
	record.Notes = in.Notes
	record.Medications = model.NewJSONB(in.Medications)
	record.Procedures = model.NewJSONB(in.Procedures)
	record.VitalSigns = model.NewJSONB(in.VitalSigns)
	record.Allergies = model.NewJSONB(in.Allergies)
	record.NextAppointment = in.NextAppointment
	if in.Status != "" {
		record.Status = in.Status
	}
	return nil
}

func (s *Service) writeError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("Medical record", err)
	case errors.Is(err, repository.ErrInUse):
		return apperrors.NewReferenceNotFound(map[string]string{
			"patientId": "Patient, doctor or appointment does not exist",
		})
	}
	return fmt.Errorf("%s: %w", msg, err)
}
