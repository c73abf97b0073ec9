package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusPending  PatientStatus = "pending"
)

type DocumentType string

const (
	DocumentTypeDNI       DocumentType = "DNI"
	DocumentTypeNIE       DocumentType = "NIE"
	DocumentTypePasaporte DocumentType = "Pasaporte"
	DocumentTypeCedula    DocumentType = "Cedula"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type MedicalHistory struct {
	Allergies   []string `json:"allergies,omitempty"`
	Conditions  []string `json:"conditions,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type InsuranceInfo struct {
	Provider     string     `json:"provider,omitempty"`
	PolicyNumber string     `json:"policyNumber,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
}

type Patient struct {
	ID              uuid.UUID             `db:"id" json:"id"`
	Name            string                `db:"name" json:"name"`
	DocumentNumber  string                `db:"document_number" json:"documentNumber"`
	DocumentType    DocumentType          `db:"document_type" json:"documentType"`
	Email           string                `db:"email" json:"email"`
	Phone           string                `db:"phone" json:"phone"`
	DateOfBirth     *time.Time            `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Address         JSONB[Address]        `db:"address" json:"address"`
	MedicalHistory  JSONB[MedicalHistory] `db:"medical_history" json:"medicalHistory"`
	InsuranceInfo   JSONB[InsuranceInfo]  `db:"insurance_info" json:"insuranceInfo"`
	LastVisit       *time.Time            `db:"last_visit" json:"lastVisit,omitempty"`
	NextAppointment *time.Time            `db:"next_appointment" json:"nextAppointment,omitempty"`
	Status          PatientStatus         `db:"status" json:"status"`
	Timestamps
}

type CreatePatientRequest struct {
	Name           string          `json:"name" binding:"required"`
	DocumentNumber string          `json:"documentNumber" binding:"required"`
	DocumentType   DocumentType    `json:"documentType" binding:"omitempty,oneof=DNI NIE Pasaporte Cedula"`
	Email          string          `json:"email" binding:"omitempty,email"`
	Phone          string          `json:"phone" binding:"required"`
	DateOfBirth    *time.Time      `json:"dateOfBirth"`
	Address        *Address        `json:"address"`
	MedicalHistory *MedicalHistory `json:"medicalHistory"`
	InsuranceInfo  *InsuranceInfo  `json:"insuranceInfo"`
	Status         PatientStatus   `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

type UpdatePatientRequest struct {
	Name           *string         `json:"name"`
	DocumentNumber *string         `json:"documentNumber"`
	DocumentType   *DocumentType   `json:"documentType" binding:"omitempty,oneof=DNI NIE Pasaporte Cedula"`
	Email          *string         `json:"email" binding:"omitempty,email"`
	Phone          *string         `json:"phone"`
	DateOfBirth    *time.Time      `json:"dateOfBirth"`
	Address        *Address        `json:"address"`
	MedicalHistory *MedicalHistory `json:"medicalHistory"`
	InsuranceInfo  *InsuranceInfo  `json:"insuranceInfo"`
	Status         *PatientStatus  `json:"status" binding:"omitempty,oneof=active inactive pending"`
}
