package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusConverted RequestStatus = "converted"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusConverted:
		return true
	}
	return false
}

const DefaultRequestSource = "landing_page"

// PatientInfo is the denormalized patient identity captured by a public request.
type PatientInfo struct {
	FirstName      string       `json:"firstName" db:"first_name" binding:"required"`
	LastName       string       `json:"lastName" db:"last_name" binding:"required"`
	Phone          string       `json:"phone" db:"phone" binding:"required"`
	Email          string       `json:"email" db:"email" binding:"required,email"`
	DocumentNumber string       `json:"documentNumber" db:"document_number" binding:"required"`
	DocumentType   DocumentType `json:"documentType" db:"document_type" binding:"required,oneof=DNI NIE Pasaporte Cedula"`
	Notes          string       `json:"notes" db:"notes"`
}

func (p PatientInfo) FullName() string {
	return p.FirstName + " " + p.LastName
}

type AppointmentRequest struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	ServiceID       uuid.UUID     `db:"service_id" json:"service"`
	PreferredDoctor *uuid.UUID    `db:"preferred_doctor_id" json:"preferredDoctor"`
	RequestedDate   time.Time     `db:"requested_date" json:"requestedDate"`
	RequestedTime   string        `db:"requested_time" json:"requestedTime"`
	PatientInfo     PatientInfo   `db:"patient" json:"patientInfo"`
	Status          RequestStatus `db:"status" json:"status"`
	AppointmentID   *uuid.UUID    `db:"appointment_id" json:"appointmentId"`
	PatientID       *uuid.UUID    `db:"patient_id" json:"patientId"`
	AdminNotes      string        `db:"admin_notes" json:"adminNotes"`
	ProcessedBy     *uuid.UUID    `db:"processed_by" json:"processedBy"`
	ProcessedAt     *time.Time    `db:"processed_at" json:"processedAt"`
	Source          string        `db:"source" json:"source"`
	ClientIP        *string       `db:"client_ip" json:"clientIP,omitempty"`
	Timestamps
}

type CreateAppointmentRequestInput struct {
	Service         string      `json:"service" binding:"required,uuid"`
	PreferredDoctor string      `json:"preferredDoctor" binding:"omitempty,uuid"`
	RequestedDate   string      `json:"requestedDate" binding:"required,datetime=2006-01-02"`
	RequestedTime   string      `json:"requestedTime" binding:"required,hhmm"`
	PatientInfo     PatientInfo `json:"patientInfo" binding:"required"`
	Source          string      `json:"source"`
}

type UpdateRequestStatusInput struct {
	Status     RequestStatus `json:"status" binding:"required,oneof=pending approved rejected converted"`
	AdminNotes *string       `json:"adminNotes"`
}

type ConvertRequestInput struct {
	DoctorID  string  `json:"doctorId" binding:"required,uuid"`
	FinalDate *string `json:"finalDate" binding:"omitempty,datetime=2006-01-02"`
	FinalTime *string `json:"finalTime" binding:"omitempty,hhmm"`
}

type RequestFilters struct {
	Status RequestStatus
	Pagination
}

// RequestStat is a count of requests sharing a status.
type RequestStat struct {
	Status RequestStatus `db:"status" json:"_id"`
	Count  int           `db:"count" json:"count"`
}
