package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique violations other than the appointment slot index.
	ErrDuplicate = errors.New("record already exists")
	// ErrSlotTaken is returned when the doctor already has a non-cancelled appointment at that instant.
	ErrSlotTaken = errors.New("appointment slot already taken")
	// ErrInUse is returned when a delete is blocked by rows referencing the record.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrConflictingState is returned when a row changed state under a transactional write.
	ErrConflictingState = errors.New("record is not in the expected state")
)

// Conversion groups the writes of an appointment request conversion.
// NewPatient is nil when the request resolved to an existing patient.
type Conversion struct {
	Request     *model.AppointmentRequest
	Appointment *model.Appointment
	NewPatient  *model.Patient
}

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error)
		HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error)
		ListDueForReminder(ctx context.Context, from, to time.Time) ([]*model.AppointmentDetails, error)
		MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkQRGenerated(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	AppointmentRequestRepository interface {
		Create(ctx context.Context, req *model.AppointmentRequest) error
		Get(ctx context.Context, id uuid.UUID) (*model.AppointmentRequest, error)
		Update(ctx context.Context, req *model.AppointmentRequest) error
		List(ctx context.Context, filters model.RequestFilters) ([]*model.AppointmentRequest, int, error)
		Stats(ctx context.Context) ([]model.RequestStat, error)
		Convert(ctx context.Context, conv *Conversion) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, search string, page model.Pagination) ([]*model.Patient, int, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, role model.Role, activeOnly bool) ([]*model.User, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, category model.ServiceCategory, activeOnly bool) ([]*model.Service, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters model.MedicalRecordFilters) ([]*model.MedicalRecord, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, event *model.OutboxEvent) error
		MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
