package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/lock"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/qrcode"
)

// CheckInWindow is how far from the appointment time a check-in is accepted.
const CheckInWindow = 24 * time.Hour

// DoctorLookup resolves users that carry the doctor role.
type DoctorLookup interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type ServiceLookup interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

type Config struct {
	Location    *time.Location
	FrontendURL string
}

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	doctors      DoctorLookup
	services     ServiceLookup
	notifier     notification.Notifier
	locker       lock.Locker
	qr           qrcode.Generator
	config       Config
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors DoctorLookup,
	services ServiceLookup,
	notifier notification.Notifier,
	locker lock.Locker,
	qr qrcode.Generator,
	config Config,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if locker == nil {
		locker = lock.Noop()
	}
	return &Service{
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		services:     services,
		notifier:     notifier,
		locker:       locker,
		qr:           qr,
		config:       config,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (*model.AppointmentDetails, error) {
	missing := map[string]string{}
	if req.Patient == "" {
		missing["patient"] = "Patient ID is required"
	}
	if req.Doctor == "" {
		missing["doctor"] = "Doctor ID is required"
	}
	if req.Service == "" {
		missing["service"] = "Service ID is required"
	}
	if req.Date == nil || req.Date.IsZero() {
		missing["date"] = "Date is required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidation("Missing required fields", missing)
	}

	refs, err := parseRefs(&req.Patient, &req.Doctor, &req.Service)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRefs(ctx, refs); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ID:            uuid.New(),
		PatientID:     *refs.patient,
		DoctorID:      *refs.doctor,
		ServiceID:     *refs.service,
		Date:          *req.Date,
		Duration:      model.DefaultAppointmentDuration,
		Status:        model.AppointmentStatusScheduled,
		PaymentStatus: model.PaymentStatusPending,
		Notes:         req.Notes,
	}
	if req.Duration != nil {
		apt.Duration = *req.Duration
	}
	if req.PaymentStatus != nil {
		apt.PaymentStatus = *req.PaymentStatus
	}
	if req.Amount != nil {
		apt.Amount.Decimal = *req.Amount
		apt.Amount.Valid = true
	}

	return s.Book(ctx, apt, func(ctx context.Context) error {
		return s.appointments.Create(ctx, apt)
	})
}

// Book validates apt, runs write under the slot guard and sends the
// confirmation. write must persist apt; request conversion supplies its own.
func (s *Service) Book(ctx context.Context, apt *model.Appointment, write func(ctx context.Context) error) (*model.AppointmentDetails, error) {
	if err := validateFields(apt); err != nil {
		return nil, err
	}
	apt.Date = normalize(apt.Date)

	if err := s.reserve(ctx, apt.DoctorID, apt.Date, nil, write); err != nil {
		return nil, s.writeError(err, "failed to create appointment")
	}
	s.metrics.AppointmentsCreated.Inc()

	details, err := s.GetAppointment(ctx, apt.ID)
	if err != nil {
		return nil, err
	}

	if details.Patient.Email != "" {
		s.notify(ctx, model.NotificationConfirmation, apt.ID)
	}

	s.logger.Info("appointment created",
		"appointment_id", apt.ID.String(),
		"doctor_id", apt.DoctorID.String(),
		"date", apt.Date,
	)
	return details, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req model.UpdateAppointmentRequest) (*model.AppointmentDetails, error) {
	refs, err := parseRefs(req.Patient, req.Doctor, req.Service)
	if err != nil {
		return nil, err
	}

	existing, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}

	if err := s.resolveRefs(ctx, refs); err != nil {
		return nil, err
	}

	updated := *existing
	if refs.patient != nil {
		updated.PatientID = *refs.patient
	}
	if refs.doctor != nil {
		updated.DoctorID = *refs.doctor
	}
	if refs.service != nil {
		updated.ServiceID = *refs.service
	}
	if req.Date != nil {
		updated.Date = normalize(*req.Date)
	}
	if req.Duration != nil {
		updated.Duration = *req.Duration
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		updated.PaymentStatus = *req.PaymentStatus
	}
	if req.Amount != nil {
		updated.Amount.Decimal = *req.Amount
		updated.Amount.Valid = true
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if err := validateFields(&updated); err != nil {
		return nil, err
	}

	write := func(ctx context.Context) error {
		return s.appointments.Update(ctx, &updated)
	}
	if req.Date != nil || req.Doctor != nil {
		err = s.reserve(ctx, updated.DoctorID, updated.Date, &updated.ID, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, s.writeError(err, "failed to update appointment")
	}

	if updated.Status != existing.Status {
		s.metrics.AppointmentTransition.WithLabelValues(string(updated.Status)).Inc()
	}

	switch {
	case !normalize(updated.Date).Equal(normalize(existing.Date)):
		s.notify(ctx, model.NotificationReschedule, id)
	case existing.Status != model.AppointmentStatusConfirmed && updated.Status == model.AppointmentStatusConfirmed:
		s.notify(ctx, model.NotificationConfirmation, id)
	}

	return s.GetAppointment(ctx, id)
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, s.writeError(err, "failed to cancel appointment")
	}
	s.metrics.AppointmentTransition.WithLabelValues(string(apt.Status)).Inc()

	s.notify(ctx, model.NotificationCancellation, id)

	return s.GetAppointment(ctx, id)
}

// DeleteAppointment removes the appointment and returns what was deleted.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	details, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Delete(ctx, id); err != nil {
		return nil, s.writeError(err, "failed to delete appointment")
	}

	s.logger.Info("appointment deleted", "appointment_id", id.String())
	return details, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	details, err := s.appointments.GetDetails(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}
	return details, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperrors.NewValidation("Invalid status", map[string]string{"status": "Unknown appointment status"})
	}

	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListByPatient returns the patient's appointments, most recent first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetails, error) {
	return s.ListAppointments(ctx, model.AppointmentFilters{PatientID: patientID, Sort: model.SortDesc})
}

// ListByDoctor returns the doctor's agenda in chronological order.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetails, error) {
	return s.ListAppointments(ctx, model.AppointmentFilters{DoctorID: doctorID, Sort: model.SortAsc})
}

// HasConflict reports whether the doctor already has a non-cancelled
// appointment at exactly that instant.
func (s *Service) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	conflict, err := s.appointments.HasConflict(ctx, doctorID, normalize(date), excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return conflict, nil
}

// reserve runs write under the slot lock once the conflict check passed.
func (s *Service) reserve(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID, write func(ctx context.Context) error) error {
	return s.locker.WithLock(ctx, lock.SlotKey(doctorID, date), func(ctx context.Context) error {
		conflict, err := s.HasConflict(ctx, doctorID, date, excludeID)
		if err != nil {
			return err
		}
		if conflict {
			s.metrics.AppointmentConflicts.WithLabelValues("check").Inc()
			return apperrors.NewSlotConflict()
		}
		return write(ctx)
	})
}

func (s *Service) notify(ctx context.Context, kind model.NotificationKind, id uuid.UUID) {
	if err := s.notifier.Notify(ctx, kind, id); err != nil {
		s.logger.Error(err, "failed to enqueue notification",
			"appointment_id", id.String(),
			"kind", string(kind),
		)
	}
}

func (s *Service) readError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("Appointment", err)
	}
	return fmt.Errorf("failed to load appointment: %w", err)
}

func (s *Service) writeError(err error, msg string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("Appointment", err)
	case errors.Is(err, repository.ErrSlotTaken):
		s.metrics.AppointmentConflicts.WithLabelValues("index").Inc()
		return apperrors.NewDoubleBooked(err)
	case errors.Is(err, lock.ErrLockNotAcquired):
		s.metrics.AppointmentConflicts.WithLabelValues("lock").Inc()
		return apperrors.NewDoubleBooked(err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// normalize keeps instants comparable with what the store returns.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func validateFields(apt *model.Appointment) error {
	details := map[string]string{}
	if apt.Duration <= 0 {
		details["duration"] = "Duration must be a positive number of minutes"
	}
	if !apt.Status.Valid() {
		details["status"] = "Unknown appointment status"
	}
	if !apt.PaymentStatus.Valid() {
		details["paymentStatus"] = "Unknown payment status"
	}
	if apt.Amount.Valid && apt.Amount.Decimal.IsNegative() {
		details["amount"] = "Amount cannot be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidation("Validation failed", details)
	}
	return nil
}
