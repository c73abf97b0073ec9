package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

// ReminderJob enqueues reminders for appointments taking place tomorrow in
// the clinic's timezone.
type ReminderJob struct {
	appointments repository.AppointmentRepository
	notifier     notification.Notifier
	location     *time.Location
	logger       *logger.Logger
	now          func() time.Time
}

func NewReminderJob(appointments repository.AppointmentRepository, notifier notification.Notifier, location *time.Location, logger *logger.Logger) *ReminderJob {
	if location == nil {
		location = time.UTC
	}
	return &ReminderJob{
		appointments: appointments,
		notifier:     notifier,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// Window returns tomorrow as [start, end) in the clinic's timezone.
func (j *ReminderJob) Window() (time.Time, time.Time) {
	y, m, d := j.now().In(j.location).Date()
	start := time.Date(y, m, d+1, 0, 0, 0, 0, j.location)
	return start, start.AddDate(0, 0, 1)
}

// Run returns how many reminders were enqueued. Failures on individual
// appointments are logged and left for the next run.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	start, end := j.Window()
	due, err := j.appointments.ListDueForReminder(ctx, start.UTC(), end.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list appointments due for reminder: %w", err)
	}

	sent := 0
	for _, apt := range due {
		if apt.Patient.Email == "" {
			continue
		}

		if err := j.notifier.Notify(ctx, model.NotificationReminder, apt.ID); err != nil {
			j.logger.Error(err, "failed to enqueue reminder", "appointment_id", apt.ID.String())
			continue
		}

		if err := j.appointments.MarkReminderSent(ctx, apt.ID, j.now()); err != nil {
			j.logger.Error(err, "failed to mark reminder sent", "appointment_id", apt.ID.String())
			continue
		}
		sent++
	}

	j.logger.Info("reminder run finished",
		"window_start", start,
		"due", len(due),
		"enqueued", sent,
	)
	return sent, nil
}
