package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const requestColumns = `
	id, service_id, preferred_doctor_id, requested_date, requested_time,
	first_name AS "patient.first_name", last_name AS "patient.last_name",
	phone AS "patient.phone", email AS "patient.email",
	document_number AS "patient.document_number", document_type AS "patient.document_type",
	patient_notes AS "patient.notes",
	status, appointment_id, patient_id, admin_notes, processed_by, processed_at,
	source, client_ip, created_at, updated_at`

type appointmentRequestRepository struct {
	BaseRepository
}

func NewAppointmentRequestRepository(base BaseRepository) repository.AppointmentRequestRepository {
	return &appointmentRequestRepository{base}
}

func (r *appointmentRequestRepository) Create(ctx context.Context, req *model.AppointmentRequest) error {
	query := `
		INSERT INTO appointment_requests (
			id, service_id, preferred_doctor_id, requested_date, requested_time,
			first_name, last_name, phone, email, document_number, document_type, patient_notes,
			status, source, client_ip, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	info := req.PatientInfo
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.ServiceID,
		req.PreferredDoctor,
		req.RequestedDate,
		req.RequestedTime,
		info.FirstName,
		info.LastName,
		info.Phone,
		info.Email,
		info.DocumentNumber,
		info.DocumentType,
		info.Notes,
		req.Status,
		req.Source,
		req.ClientIP,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment request: %w", translate(err))
	}
	return nil
}

func (r *appointmentRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM appointment_requests WHERE id = $1`

	var req model.AppointmentRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment request: %w", translate(err))
	}
	return &req, nil
}

func (r *appointmentRequestRepository) Update(ctx context.Context, req *model.AppointmentRequest) error {
	return updateRequest(ctx, r.db, req)
}

func updateRequest(ctx context.Context, db execer, req *model.AppointmentRequest) error {
	query := `
		UPDATE appointment_requests
		SET status = $1, appointment_id = $2, patient_id = $3, admin_notes = $4,
			processed_by = $5, processed_at = $6, updated_at = $7
		WHERE id = $8
	`
	req.UpdatedAt = time.Now().UTC()

	result, err := db.ExecContext(ctx, query,
		req.Status,
		req.AppointmentID,
		req.PatientID,
		req.AdminNotes,
		req.ProcessedBy,
		req.ProcessedAt,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment request: %w", translate(err))
	}
	return expectRows(result)
}

func (r *appointmentRequestRepository) List(ctx context.Context, filters model.RequestFilters) ([]*model.AppointmentRequest, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointment_requests`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointment requests: %w", err)
	}

	page := filters.Pagination.Normalize()
	query := `SELECT ` + requestColumns + ` FROM appointment_requests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var requests []*model.AppointmentRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointment requests: %w", err)
	}
	return requests, total, nil
}

func (r *appointmentRequestRepository) Stats(ctx context.Context) ([]model.RequestStat, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM appointment_requests
		GROUP BY status
		ORDER BY status
	`
	var stats []model.RequestStat
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get appointment request stats: %w", err)
	}
	return stats, nil
}

// Convert writes the new patient (if any), the appointment and the request
// back-references atomically. The request row is locked and its status
// re-checked inside the transaction so concurrent conversions cannot both win.
func (r *appointmentRequestRepository) Convert(ctx context.Context, conv *repository.Conversion) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var status model.RequestStatus
		err := tx.GetContext(ctx, &status,
			`SELECT status FROM appointment_requests WHERE id = $1 FOR UPDATE`, conv.Request.ID)
		if err != nil {
			return fmt.Errorf("failed to lock appointment request: %w", translate(err))
		}
		if status != model.RequestStatusApproved {
			return fmt.Errorf("appointment request is %s: %w", status, repository.ErrConflictingState)
		}

		if conv.NewPatient != nil {
			if err := insertPatient(ctx, tx, conv.NewPatient); err != nil {
				return err
			}
			conv.Appointment.PatientID = conv.NewPatient.ID
		}

		if err := insertAppointment(ctx, tx, conv.Appointment); err != nil {
			return err
		}

		now := time.Now().UTC()
		conv.Request.Status = model.RequestStatusConverted
		conv.Request.AppointmentID = &conv.Appointment.ID
		conv.Request.PatientID = &conv.Appointment.PatientID
		conv.Request.ProcessedAt = &now
		return updateRequest(ctx, tx, conv.Request)
	})
}
