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
)

// Convert turns an approved request into an appointment. The requested
// date and time apply unless overridden, and are read in the clinic's
// timezone. The appointment insert and the request update commit together.
func (s *Service) Convert(ctx context.Context, id uuid.UUID, in model.ConvertRequestInput, processedBy *uuid.UUID) (*model.AppointmentDetails, error) {
	doctorID, err := uuid.Parse(in.DoctorID)
	if err != nil {
		return nil, apperrors.NewValidation("Invalid ID format", map[string]string{"doctorId": "Invalid doctor ID format"})
	}

	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusApproved {
		return nil, apperrors.NewInvalidState("Only approved requests can be converted")
	}

	date, err := s.appointmentDate(req, in)
	if err != nil {
		return nil, err
	}

	refErrs := map[string]string{}
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to resolve doctor: %w", err)
		}
		refErrs["doctor"] = "Doctor not found"
	}
	svc, err := s.services.GetService(ctx, req.ServiceID)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to resolve service: %w", err)
		}
		refErrs["service"] = "Service not found"
	}
	if len(refErrs) > 0 {
		return nil, apperrors.NewReferenceNotFound(refErrs)
	}

	conv := &repository.Conversion{Request: req}
	patient, err := s.patients.GetByDocument(ctx, req.PatientInfo.DocumentNumber)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		conv.NewPatient = newPatient(req.PatientInfo)
	case err != nil:
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}

	apt := &model.Appointment{
		ID:            uuid.New(),
		DoctorID:      doctorID,
		ServiceID:     req.ServiceID,
		Date:          date,
		Duration:      svc.Duration,
		Status:        model.AppointmentStatusScheduled,
		PaymentStatus: model.PaymentStatusPending,
		Notes:         req.PatientInfo.Notes,
	}
	if apt.Duration <= 0 {
		apt.Duration = model.DefaultAppointmentDuration
	}
	if conv.NewPatient != nil {
		apt.PatientID = conv.NewPatient.ID
	} else {
		apt.PatientID = patient.ID
	}
	conv.Appointment = apt
	req.ProcessedBy = processedBy

	details, err := s.booker.Book(ctx, apt, func(ctx context.Context) error {
		return s.writeConversion(ctx, conv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment request converted",
		"request_id", id.String(),
		"appointment_id", apt.ID.String(),
		"new_patient", conv.NewPatient != nil,
	)
	return details, nil
}

// writeConversion persists conv. If another conversion registered the same
// document number after the lookup, that patient is used and the write is
// retried once.
func (s *Service) writeConversion(ctx context.Context, conv *repository.Conversion) error {
	err := s.requests.Convert(ctx, conv)
	if errors.Is(err, repository.ErrDuplicate) && conv.NewPatient != nil {
		patient, lookupErr := s.patients.GetByDocument(ctx, conv.NewPatient.DocumentNumber)
		switch {
		case lookupErr == nil:
			s.logger.Warn("patient created concurrently, reusing it",
				"request_id", conv.Request.ID.String(),
				"patient_id", patient.ID.String())
			conv.NewPatient = nil
			conv.Appointment.PatientID = patient.ID
			err = s.requests.Convert(ctx, conv)
		case !errors.Is(lookupErr, repository.ErrNotFound):
			return fmt.Errorf("failed to resolve patient: %w", lookupErr)
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrConflictingState):
		return apperrors.NewInvalidState("Only approved requests can be converted")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewValidation("Validation failed", map[string]string{
			"documentNumber": "A patient with this document number already exists",
		})
	}
	return err
}

func (s *Service) appointmentDate(req *model.AppointmentRequest, in model.ConvertRequestInput) (time.Time, error) {
	day := req.RequestedDate.Format("2006-01-02")
	if in.FinalDate != nil && *in.FinalDate != "" {
		day = *in.FinalDate
	}
	clock := req.RequestedTime
	if in.FinalTime != nil && *in.FinalTime != "" {
		clock = *in.FinalTime
	}

	date, err := time.ParseInLocation(dateTimeLayout, day+" "+clock, s.location)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("Validation failed", map[string]string{
			"finalDate": "Date and time must be YYYY-MM-DD and HH:MM",
		})
	}
	return date, nil
}

func newPatient(info model.PatientInfo) *model.Patient {
	return &model.Patient{
		ID:             uuid.New(),
		Name:           info.FullName(),
		DocumentNumber: info.DocumentNumber,
		DocumentType:   info.DocumentType,
		Email:          info.Email,
		Phone:          info.Phone,
		Status:         model.PatientStatusActive,
	}
}
