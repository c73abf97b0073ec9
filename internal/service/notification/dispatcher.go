package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/worker"
)

// ErrNotDelivered is returned when the sender reports a failed delivery.
var ErrNotDelivered = errors.New("notification not delivered")

// Sender delivers one notification and reports success only.
type Sender interface {
	Send(ctx context.Context, kind model.NotificationKind, appointment *model.AppointmentDetails) bool
}

// Dispatcher turns notification outbox events into deliveries.
type Dispatcher struct {
	appointments repository.AppointmentRepository
	sender       Sender
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewDispatcher(appointments repository.AppointmentRepository, sender Sender, logger *logger.Logger, metrics *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		appointments: appointments,
		sender:       sender,
		logger:       logger,
		metrics:      metrics,
	}
}

// Register binds the dispatcher to every notification event type.
func (d *Dispatcher) Register(p *worker.OutboxProcessor) {
	for _, kind := range model.NotificationKinds {
		p.Register(kind.EventType(), d.Handle)
	}
}

// Handle delivers a single notification event. A returned error makes the
// processor retry the event.
func (d *Dispatcher) Handle(ctx context.Context, event *model.OutboxEvent) error {
	kind, ok := model.KindFromEventType(event.EventType)
	if !ok {
		return fmt.Errorf("unknown notification event type %q", event.EventType)
	}

	var payload model.NotificationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode notification payload: %w", err)
	}

	log := d.logger.WithFields(map[string]interface{}{
		"event_id":       event.ID.String(),
		"appointment_id": payload.AppointmentID.String(),
		"kind":           string(kind),
	})

	details, err := d.appointments.GetDetails(ctx, payload.AppointmentID)
	if errors.Is(err, repository.ErrNotFound) {
		// deleted since the event was written
		log.Warn("appointment no longer exists, dropping notification")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if details.Patient.Email == "" {
		log.Debug("patient has no email, skipping notification")
		return nil
	}

	if !d.sender.Send(ctx, kind, details) {
		d.metrics.NotificationsFailed.WithLabelValues(string(kind)).Inc()
		log.Warn("notification delivery failed", "retry_count", event.RetryCount)
		return ErrNotDelivered
	}

	d.metrics.NotificationsDelivered.WithLabelValues(string(kind)).Inc()
	log.Info("notification delivered", "patient_id", details.Patient.ID.String())
	return nil
}
