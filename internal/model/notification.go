package model

import (
	"strings"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "confirmation"
	NotificationReminder     NotificationKind = "reminder"
	NotificationCancellation NotificationKind = "cancellation"
	NotificationReschedule   NotificationKind = "reschedule"
)

var NotificationKinds = []NotificationKind{
	NotificationConfirmation,
	NotificationReminder,
	NotificationCancellation,
	NotificationReschedule,
}

const notificationEventPrefix = "appointment.notification."

// EventType is the outbox event type carrying a notification of this kind.
func (k NotificationKind) EventType() string {
	return notificationEventPrefix + string(k)
}

// KindFromEventType is the inverse of EventType.
func KindFromEventType(eventType string) (NotificationKind, bool) {
	if !strings.HasPrefix(eventType, notificationEventPrefix) {
		return "", false
	}
	kind := NotificationKind(strings.TrimPrefix(eventType, notificationEventPrefix))
	for _, k := range NotificationKinds {
		if k == kind {
			return kind, true
		}
	}
	return "", false
}

// NotificationPayload is the outbox payload of a notification event.
type NotificationPayload struct {
	AppointmentID uuid.UUID        `json:"appointment_id"`
	Kind          NotificationKind `json:"kind"`
}
