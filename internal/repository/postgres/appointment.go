package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const appointmentColumns = `
	a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.duration, a.status,
	a.payment_status, a.amount, a.notes, a.checked_in_at, a.checked_in_by,
	a.qr_generated, a.qr_generated_at, a.reminder_sent, a.reminder_scheduled_for,
	a.created_at, a.updated_at`

const appointmentDetailsSelect = `
	SELECT ` + appointmentColumns + `,
		p.id AS "patient.id", p.name AS "patient.name", p.email AS "patient.email",
		p.phone AS "patient.phone", p.document_number AS "patient.document_number",
		u.id AS "doctor.id", u.name AS "doctor.name", u.specialization AS "doctor.specialization",
		s.id AS "service.id", s.name AS "service.name", s.duration AS "service.duration",
		s.price AS "service.price"
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users u ON u.id = a.doctor_id
	JOIN services s ON s.id = a.service_id`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	return insertAppointment(ctx, r.db, apt)
}

// insertAppointment is shared with the request conversion transaction.
func insertAppointment(ctx context.Context, db execer, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, service_id, date, duration, status,
			payment_status, amount, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	_, err := db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.ServiceID,
		apt.Date,
		apt.Duration,
		apt.Status,
		apt.PaymentStatus,
		apt.Amount,
		apt.Notes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &apt, nil
}

func (r *appointmentRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + ` WHERE a.id = $1`

	var details model.AppointmentDetails
	if err := r.db.GetContext(ctx, &details, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment details: %w", translate(err))
	}
	return &details, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, service_id = $3, date = $4, duration = $5,
			status = $6, payment_status = $7, amount = $8, notes = $9,
			checked_in_at = $10, checked_in_by = $11, updated_at = $12
		WHERE id = $13
	`
	apt.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		apt.PatientID,
		apt.DoctorID,
		apt.ServiceID,
		apt.Date,
		apt.Duration,
		apt.Status,
		apt.PaymentStatus,
		apt.Amount,
		apt.Notes,
		apt.CheckedInAt,
		apt.CheckedInBy,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}
	return expectRows(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", translate(err))
	}
	return expectRows(result)
}

func (r *appointmentRepository) List(ctx context.Context, filters model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
	}
	if filters.DoctorID != uuid.Nil {
		args = append(args, filters.DoctorID)
		query += fmt.Sprintf(" AND a.doctor_id = $%d", len(args))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		query += fmt.Sprintf(" AND a.date >= $%d", len(args))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		query += fmt.Sprintf(" AND a.date < $%d", len(args))
	}

	if filters.Sort == model.SortDesc {
		query += " ORDER BY a.date DESC"
	} else {
		query += " ORDER BY a.date ASC"
	}
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var appointments []*model.AppointmentDetails
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// HasConflict matches on the exact instant only; duration is not considered.
func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			AND date = $2
			AND status <> 'cancelled'
	`
	args := []interface{}{doctorID, date}

	if excludeID != nil {
		query += " AND id <> $3"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasConflict bool
	if err := r.db.GetContext(ctx, &hasConflict, query, args...); err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return hasConflict, nil
}

func (r *appointmentRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*model.AppointmentDetails, error) {
	query := appointmentDetailsSelect + `
		WHERE a.date >= $1 AND a.date < $2
		AND a.status IN ('scheduled', 'confirmed')
		AND a.reminder_sent = FALSE
		ORDER BY a.date ASC
	`
	var appointments []*model.AppointmentDetails
	if err := r.db.SelectContext(ctx, &appointments, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list appointments due for reminder: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE appointments
		SET reminder_sent = TRUE, reminder_scheduled_for = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return expectRows(result)
}

func (r *appointmentRepository) MarkQRGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE appointments
		SET qr_generated = TRUE, qr_generated_at = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark qr generated: %w", err)
	}
	return expectRows(result)
}
