package model

import (
	"time"

	"github.com/google/uuid"
)

type RecordStatus string

const (
	RecordStatusActive    RecordStatus = "active"
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusFollowUp  RecordStatus = "follow-up"
)

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Procedure struct {
	Name        string `json:"name"`
	Tooth       string `json:"tooth,omitempty"`
	Description string `json:"description,omitempty"`
}

type VitalSigns struct {
	BloodPressure string `json:"bloodPressure,omitempty"`
	HeartRate     string `json:"heartRate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
}

type Allergy struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction,omitempty"`
	Severity string `json:"severity,omitempty" binding:"omitempty,oneof=mild moderate severe"`
}

type MedicalRecord struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	PatientID       uuid.UUID           `db:"patient_id" json:"patientId"`
	DoctorID        uuid.UUID           `db:"doctor_id" json:"doctorId"`
	AppointmentID   *uuid.UUID          `db:"appointment_id" json:"appointmentId,omitempty"`
	Date            time.Time           `db:"date" json:"date"`
	Diagnosis       string              `db:"diagnosis" json:"diagnosis"`
	Treatment       string              `db:"treatment" json:"treatment"`
	Symptoms        string              `db:"symptoms" json:"symptoms,omitempty"`
	Notes           string              `db:"notes" json:"notes,omitempty"`
	Medications     JSONB[[]Medication] `db:"medications" json:"medications"`
	Procedures      JSONB[[]Procedure]  `db:"procedures" json:"procedures"`
	VitalSigns      JSONB[VitalSigns]   `db:"vital_signs" json:"vitalSigns"`
	Allergies       JSONB[[]Allergy]    `db:"allergies" json:"allergies"`
	NextAppointment *time.Time          `db:"next_appointment" json:"nextAppointment,omitempty"`
	Status          RecordStatus        `db:"status" json:"status"`
	Timestamps
}

type MedicalRecordInput struct {
	PatientID       string       `json:"patientId" binding:"required,uuid"`
	DoctorID        string       `json:"doctorId" binding:"required,uuid"`
	AppointmentID   string       `json:"appointmentId" binding:"omitempty,uuid"`
	Date            *time.Time   `json:"date"`
	Diagnosis       string       `json:"diagnosis" binding:"required"`
	Treatment       string       `json:"treatment" binding:"required"`
	Symptoms        string       `json:"symptoms"`
	Notes           string       `json:"notes"`
	Medications     []Medication `json:"medications"`
	Procedures      []Procedure  `json:"procedures"`
	VitalSigns      VitalSigns   `json:"vitalSigns"`
	Allergies       []Allergy    `json:"allergies" binding:"dive"`
	NextAppointment *time.Time   `json:"nextAppointment"`
	Status          RecordStatus `json:"status" binding:"omitempty,oneof=active completed follow-up"`
}

type MedicalRecordFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Query     string
	Limit     int
}
