package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

const medicalRecordColumns = `
	id, patient_id, doctor_id, appointment_id, date, diagnosis, treatment, symptoms,
	notes, medications, procedures, vital_signs, allergies, next_appointment, status,
	created_at, updated_at`

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &medicalRecordRepository{base}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, patient_id, doctor_id, appointment_id, date, diagnosis, treatment, symptoms,
			notes, medications, procedures, vital_signs, allergies, next_appointment, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.DoctorID,
		record.AppointmentID,
		record.Date,
		record.Diagnosis,
		record.Treatment,
		record.Symptoms,
		record.Notes,
		record.Medications,
		record.Procedures,
		record.VitalSigns,
		record.Allergies,
		record.NextAppointment,
		record.Status,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", translate(err))
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1`

	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", translate(err))
	}
	return &record, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records
		SET appointment_id = $1, date = $2, diagnosis = $3, treatment = $4, symptoms = $5,
			notes = $6, medications = $7, procedures = $8, vital_signs = $9, allergies = $10,
			next_appointment = $11, status = $12, updated_at = $13
		WHERE id = $14
	`
	record.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		record.AppointmentID,
		record.Date,
		record.Diagnosis,
		record.Treatment,
		record.Symptoms,
		record.Notes,
		record.Medications,
		record.Procedures,
		record.VitalSigns,
		record.Allergies,
		record.NextAppointment,
		record.Status,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", translate(err))
	}
	return expectRows(result)
}

func (r *medicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete medical record: %w", translate(err))
	}
	return expectRows(result)
}

// List returns records newest first. Query matches diagnosis, treatment or notes.
func (r *medicalRecordRepository) List(ctx context.Context, filters model.MedicalRecordFilters) ([]*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE 1=1`
	args := []interface{}{}

	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filters.DoctorID != uuid.Nil {
		args = append(args, filters.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (diagnosis ILIKE $%d OR treatment ILIKE $%d OR notes ILIKE $%d)", n, n, n)
	}

	query += " ORDER BY date DESC"
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
