package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

// Notifier submits appointment notifications for asynchronous delivery.
type Notifier interface {
	Notify(ctx context.Context, kind model.NotificationKind, appointmentID uuid.UUID) error
}

// OutboxNotifier enqueues notifications as outbox events. Delivery happens
// in the worker process, see Dispatcher.
type OutboxNotifier struct {
	repo    repository.OutboxRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxNotifier(repo repository.OutboxRepository, logger *logger.Logger, metrics *metrics.Metrics) *OutboxNotifier {
	return &OutboxNotifier{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

func (n *OutboxNotifier) Notify(ctx context.Context, kind model.NotificationKind, appointmentID uuid.UUID) error {
	event, err := model.NewOutboxEvent(kind.EventType(), model.NotificationPayload{
		AppointmentID: appointmentID,
		Kind:          kind,
	})
	if err != nil {
		return fmt.Errorf("failed to build notification event: %w", err)
	}

	if err := n.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue %s notification: %w", kind, err)
	}

	n.metrics.NotificationsEnqueued.WithLabelValues(string(kind)).Inc()
	n.logger.Debug("notification enqueued",
		"event_id", event.ID.String(),
		"appointment_id", appointmentID.String(),
		"kind", string(kind),
	)
	return nil
}
