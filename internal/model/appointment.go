package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/dental-api/pkg/qrcode"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn AppointmentStatus = "checked-in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCheckedIn,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartial:
		return true
	}
	return false
}

const (
	DefaultAppointmentDuration = 30
	// CheckedInByQRScan marks a check-in performed without a human actor.
	CheckedInByQRScan = "qr-scan"
)

type Appointment struct {
	ID                   uuid.UUID           `db:"id" json:"id"`
	PatientID            uuid.UUID           `db:"patient_id" json:"patient"`
	DoctorID             uuid.UUID           `db:"doctor_id" json:"doctor"`
	ServiceID            uuid.UUID           `db:"service_id" json:"service"`
	Date                 time.Time           `db:"date" json:"date"`
	Duration             int                 `db:"duration" json:"duration"`
	Status               AppointmentStatus   `db:"status" json:"status"`
	PaymentStatus        PaymentStatus       `db:"payment_status" json:"paymentStatus"`
	Amount               decimal.NullDecimal `db:"amount" json:"amount,omitempty"`
	Notes                string              `db:"notes" json:"notes,omitempty"`
	CheckedInAt          *time.Time          `db:"checked_in_at" json:"checkedInAt,omitempty"`
	CheckedInBy          *string             `db:"checked_in_by" json:"checkedInBy,omitempty"`
	QRGenerated          bool                `db:"qr_generated" json:"qrGenerated"`
	QRGeneratedAt        *time.Time          `db:"qr_generated_at" json:"qrGeneratedAt,omitempty"`
	ReminderSent         bool                `db:"reminder_sent" json:"reminderSent"`
	ReminderScheduledFor *time.Time          `db:"reminder_scheduled_for" json:"reminderScheduledFor,omitempty"`
	Timestamps
}

// PatientSummary is the patient projection joined into appointment reads.
type PatientSummary struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email,omitempty"`
	Phone          string    `db:"phone" json:"phone"`
	DocumentNumber string    `db:"document_number" json:"documentNumber"`
}

type DoctorSummary struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Specialization pq.StringArray `db:"specialization" json:"specialization"`
}

type ServiceSummary struct {
	ID       uuid.UUID       `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	Duration int             `db:"duration" json:"duration"`
	Price    decimal.Decimal `db:"price" json:"price"`
}

// AppointmentDetails is an appointment with its references populated.
type AppointmentDetails struct {
	Appointment
	Patient PatientSummary `db:"patient" json:"patient"`
	Doctor  DoctorSummary  `db:"doctor" json:"doctor"`
	Service ServiceSummary `db:"service" json:"service"`
}

type CreateAppointmentRequest struct {
	Patient       string           `json:"patient"`
	Doctor        string           `json:"doctor"`
	Service       string           `json:"service"`
	Date          *time.Time       `json:"date"`
	Duration      *int             `json:"duration" binding:"omitempty,min=1"`
	Notes         string           `json:"notes" binding:"max=2000"`
	PaymentStatus *PaymentStatus   `json:"paymentStatus"`
	Amount        *decimal.Decimal `json:"amount"`
}

// UpdateAppointmentRequest is a partial update; nil fields are left untouched.
type UpdateAppointmentRequest struct {
	Patient       *string            `json:"patient"`
	Doctor        *string            `json:"doctor"`
	Service       *string            `json:"service"`
	Date          *time.Time         `json:"date"`
	Duration      *int               `json:"duration" binding:"omitempty,min=1"`
	Status        *AppointmentStatus `json:"status"`
	PaymentStatus *PaymentStatus     `json:"paymentStatus"`
	Amount        *decimal.Decimal   `json:"amount"`
	Notes         *string            `json:"notes" binding:"omitempty,max=2000"`
}

// CheckInData is the decoded content of a scanned check-in code.
type CheckInData struct {
	AppointmentID string `json:"appointmentId"`
}

type CheckInRequest struct {
	QRData      *CheckInData `json:"qrData"`
	SecretaryID string       `json:"secretaryId"`
	CheckInTime *time.Time   `json:"checkInTime"`
}

type CheckInDetails struct {
	PatientName     string    `json:"patientName"`
	AppointmentTime string    `json:"appointmentTime"`
	DoctorName      string    `json:"doctorName"`
	ServiceName     string    `json:"serviceName"`
	CheckedInAt     time.Time `json:"checkedInAt"`
}

type CheckInResult struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	Appointment    *AppointmentDetails `json:"appointment"`
	CheckInDetails CheckInDetails      `json:"checkInDetails"`
}

type AppointmentFilters struct {
	Status    AppointmentStatus
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	From      *time.Time
	To        *time.Time
	Sort      SortOrder
	Limit     int
}

// CheckInPayload builds the content of the check-in code for this appointment.
func (d *AppointmentDetails) CheckInPayload(frontendURL string, now time.Time) qrcode.Payload {
	return qrcode.Payload{
		AppointmentID: d.ID.String(),
		PatientName:   d.Patient.Name,
		DoctorName:    d.Doctor.Name,
		ServiceName:   d.Service.Name,
		Date:          d.Date,
		Duration:      d.Duration,
		CheckInURL:    strings.TrimRight(frontendURL, "/") + "/checkin/" + d.ID.String(),
		Timestamp:     now,
	}
}
