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

const patientColumns = `
	id, name, document_number, document_type, email, phone, date_of_birth,
	address, medical_history, insurance_info, last_visit, next_appointment,
	status, created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return insertPatient(ctx, r.db, patient)
}

func insertPatient(ctx context.Context, db execer, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, document_number, document_type, email, phone, date_of_birth,
			address, medical_history, insurance_info, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	patient.DocumentNumber = strings.TrimSpace(patient.DocumentNumber)
	patient.Email = strings.ToLower(strings.TrimSpace(patient.Email))

	_, err := db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.DocumentNumber,
		patient.DocumentType,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.Address,
		patient.MedicalHistory,
		patient.InsuranceInfo,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translate(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE document_number = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, strings.TrimSpace(documentNumber)); err != nil {
		return nil, fmt.Errorf("failed to get patient by document: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, document_number = $2, document_type = $3, email = $4, phone = $5,
			date_of_birth = $6, address = $7, medical_history = $8, insurance_info = $9,
			last_visit = $10, next_appointment = $11, status = $12, updated_at = $13
		WHERE id = $14
	`
	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		strings.TrimSpace(patient.DocumentNumber),
		patient.DocumentType,
		strings.ToLower(strings.TrimSpace(patient.Email)),
		patient.Phone,
		patient.DateOfBirth,
		patient.Address,
		patient.MedicalHistory,
		patient.InsuranceInfo,
		patient.LastVisit,
		patient.NextAppointment,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", translate(err))
	}
	return expectRows(result)
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", translate(err))
	}
	return expectRows(result)
}

// List pages through patients by name. A non-empty search matches name,
// document number, email or phone case-insensitively.
func (r *patientRepository) List(ctx context.Context, search string, page model.Pagination) ([]*model.Patient, int, error) {
	where := ""
	args := []interface{}{}
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		where = ` WHERE name ILIKE $1 OR document_number ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	page = page.Normalize()
	query := `SELECT ` + patientColumns + ` FROM patients` + where +
		fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}
