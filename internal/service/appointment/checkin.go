package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

// CheckIn marks the patient as present. The scanned payload, when it names
// an appointment, must name this one, and the appointment must lie within
// CheckInWindow of now.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, req model.CheckInRequest) (*model.CheckInResult, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}

	if req.QRData != nil && req.QRData.AppointmentID != "" {
		scanned, err := uuid.Parse(req.QRData.AppointmentID)
		if err != nil || scanned != id {
			return nil, apperrors.NewPayloadMismatch()
		}
	}

	now := s.now()
	diff := apt.Date.Sub(now)
	if diff < 0 {
		diff = -diff
	}
	if diff > CheckInWindow {
		return nil, apperrors.NewOutOfWindow()
	}

	checkedInAt := now
	if req.CheckInTime != nil && !req.CheckInTime.IsZero() {
		checkedInAt = *req.CheckInTime
	}
	checkedInAt = normalize(checkedInAt)
	checkedInBy := model.CheckedInByQRScan
	if req.SecretaryID != "" {
		checkedInBy = req.SecretaryID
	}

	apt.Status = model.AppointmentStatusCheckedIn
	apt.CheckedInAt = &checkedInAt
	apt.CheckedInBy = &checkedInBy
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, s.writeError(err, "failed to check in appointment")
	}
	s.metrics.AppointmentCheckIns.Inc()
	s.metrics.AppointmentTransition.WithLabelValues(string(apt.Status)).Inc()

	details, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("patient checked in",
		"appointment_id", id.String(),
		"checked_in_by", checkedInBy,
	)

	return &model.CheckInResult{
		Success:     true,
		Message:     "Check-in successful",
		Appointment: details,
		CheckInDetails: model.CheckInDetails{
			PatientName:     details.Patient.Name,
			AppointmentTime: details.Date.In(s.config.Location).Format("15:04"),
			DoctorName:      details.Doctor.Name,
			ServiceName:     details.Service.Name,
			CheckedInAt:     checkedInAt,
		},
	}, nil
}

var errQRGeneration = errors.New("failed to generate QR code")

// IssueQRCode renders the check-in code for an appointment as PNG and
// records that it was issued.
func (s *Service) IssueQRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	details, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	png := s.qr.Generate(details.CheckInPayload(s.config.FrontendURL, now))
	if png == nil {
		return nil, apperrors.NewInternal(errQRGeneration)
	}

	if err := s.appointments.MarkQRGenerated(ctx, id, now); err != nil {
		return nil, s.writeError(err, fmt.Sprintf("failed to mark QR code issued for %s", id))
	}
	return png, nil
}
