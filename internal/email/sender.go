package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/qrcode"
)

const qrAttachmentName = "checkin-qr.png"

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	FromName      string
	ClinicName    string
	ClinicAddress string
	ClinicPhone   string
	FrontendURL   string
	Location      *time.Location
}

// Dialer is the part of *gomail.Dialer the sender uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender delivers appointment notifications over SMTP.
type Sender struct {
	config    Config
	dialer    Dialer
	qr        qrcode.Generator
	templates *template.Template
	logger    *logger.Logger
	now       func() time.Time
}

func NewSender(config Config, qr qrcode.Generator, logger *logger.Logger) (*Sender, error) {
	return newSender(config, gomail.NewDialer(config.Host, config.Port, config.User, config.Password), qr, logger)
}

func newSender(config Config, dialer Dialer, qr qrcode.Generator, logger *logger.Logger) (*Sender, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.FromName == "" {
		config.FromName = config.ClinicName
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Sender{
		config:    config,
		dialer:    dialer,
		qr:        qr,
		templates: tmpl,
		logger:    logger,
		now:       time.Now,
	}, nil
}

type templateData struct {
	ClinicName    string
	ClinicAddress string
	ClinicPhone   string
	PatientName   string
	DoctorName    string
	ServiceName   string
	Date          string
	Time          string
	Duration      int
	CheckInURL    string
	QRCode        string
}

var subjects = map[model.NotificationKind]string{
	model.NotificationConfirmation: "Appointment confirmed",
	model.NotificationReminder:     "Reminder: your appointment is tomorrow",
	model.NotificationCancellation: "Appointment cancelled",
	model.NotificationReschedule:   "Appointment rescheduled",
}

// withQR lists the kinds whose email carries the check-in code.
var withQR = map[model.NotificationKind]bool{
	model.NotificationConfirmation: true,
	model.NotificationReminder:     true,
}

// Send renders and delivers one notification. Failures are logged and
// reported as false.
func (s *Sender) Send(_ context.Context, kind model.NotificationKind, apt *model.AppointmentDetails) bool {
	msg, err := s.Build(kind, apt)
	if err != nil {
		s.logger.Error(err, "failed to build email", "kind", string(kind), "appointment_id", apt.ID.String())
		return false
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Error(err, "failed to send email", "kind", string(kind), "appointment_id", apt.ID.String())
		return false
	}
	return true
}

func (s *Sender) Build(kind model.NotificationKind, apt *model.AppointmentDetails) (*gomail.Message, error) {
	subject, ok := subjects[kind]
	if !ok {
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
	if apt.Patient.Email == "" {
		return nil, fmt.Errorf("patient %s has no email", apt.Patient.ID)
	}

	local := apt.Date.In(s.config.Location)
	payload := apt.CheckInPayload(s.config.FrontendURL, s.now())
	data := templateData{
		ClinicName:    s.config.ClinicName,
		ClinicAddress: s.config.ClinicAddress,
		ClinicPhone:   s.config.ClinicPhone,
		PatientName:   apt.Patient.Name,
		DoctorName:    apt.Doctor.Name,
		ServiceName:   apt.Service.Name,
		Date:          local.Format("Monday, 02 January 2006"),
		Time:          local.Format("15:04"),
		Duration:      apt.Duration,
		CheckInURL:    payload.CheckInURL,
	}

	var png []byte
	if withQR[kind] {
		// the email still goes out without the image
		if png = s.qr.Generate(payload); png != nil {
			data.QRCode = qrAttachmentName
		}
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, string(kind)+".html", data); err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", kind, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.From, s.config.FromName)
	m.SetAddressHeader("To", apt.Patient.Email, apt.Patient.Name)
	m.SetHeader("Subject", fmt.Sprintf("%s - %s", subject, s.config.ClinicName))
	m.SetBody("text/html", body.String())
	if png != nil {
		m.Embed(qrAttachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}))
	}
	return m, nil
}
