package messaging

import (
	"context"
)

// Broker fans processed outbox events out to live subscribers. Delivery is
// at most once; the outbox table stays the source of truth.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe streams raw payloads until ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every processed outbox event.
type Message struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
