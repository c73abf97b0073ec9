package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCheckInPayload(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	now := at.Add(-time.Hour)
	d := &AppointmentDetails{
		Appointment: Appointment{ID: id, Date: at, Duration: 45},
		Patient:     PatientSummary{Name: "Lucia Gomez"},
		Doctor:      DoctorSummary{Name: "Dr. Ruiz"},
		Service:     ServiceSummary{Name: "Limpieza"},
	}

	p := d.CheckInPayload("https://clinic.test/", now)

	assert.Equal(t, id.String(), p.AppointmentID)
	assert.Equal(t, "https://clinic.test/checkin/"+id.String(), p.CheckInURL)
	assert.Equal(t, 45, p.Duration)
	assert.Equal(t, "Dr. Ruiz", p.DoctorName)
	assert.Equal(t, now, p.Timestamp)
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, AppointmentStatusCheckedIn.Valid())
	assert.True(t, AppointmentStatusNoShow.Valid())
	assert.False(t, AppointmentStatus("archived").Valid())
	assert.False(t, PaymentStatus("refunded").Valid())
}
