package qrcode

import (
	"encoding/json"
	"image/color"
	"time"

	qr "github.com/skip2/go-qrcode"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

const defaultSize = 200

// Payload is what gets encoded into a check-in code.
type Payload struct {
	AppointmentID string    `json:"appointmentId"`
	PatientName   string    `json:"patientName"`
	DoctorName    string    `json:"doctorName"`
	ServiceName   string    `json:"serviceName"`
	Date          time.Time `json:"date"`
	Duration      int       `json:"duration"`
	CheckInURL    string    `json:"checkInUrl"`
	Timestamp     time.Time `json:"timestamp"`
}

// Generator renders check-in payloads as PNG images.
type Generator interface {
	// Generate returns nil when the image could not be produced.
	Generate(payload Payload) []byte
}

type pngGenerator struct {
	size   int
	logger *logger.Logger
}

func NewGenerator(size int, log *logger.Logger) Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &pngGenerator{size: size, logger: log}
}

func (g *pngGenerator) Generate(payload Payload) []byte {
	content, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error(err, "failed to encode QR payload", "appointment_id", payload.AppointmentID)
		return nil
	}

	code, err := qr.New(string(content), qr.Medium)
	if err != nil {
		g.logger.Error(err, "failed to build QR code", "appointment_id", payload.AppointmentID)
		return nil
	}
	code.ForegroundColor = color.RGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}
	code.BackgroundColor = color.White

	png, err := code.PNG(g.size)
	if err != nil {
		g.logger.Error(err, "failed to render QR code", "appointment_id", payload.AppointmentID)
		return nil
	}
	return png
}

// ParsePayload decodes the JSON a scanner read from a code.
func ParsePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
