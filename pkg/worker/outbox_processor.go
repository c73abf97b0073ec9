package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

// ErrNoHandler is recorded on events whose type nothing registered for.
var ErrNoHandler = errors.New("no handler registered for event type")

// Handler processes a single outbox event. A returned error schedules a retry.
type Handler func(ctx context.Context, event *model.OutboxEvent) error

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// Channel receives every processed event when a broker is configured.
	Channel string
}

type OutboxProcessor struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewOutboxProcessor validates config and builds a processor. broker may be nil.
func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if config.BatchSize <= 0 {
		return nil, errors.New("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, errors.New("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, errors.New("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		return nil, errors.New("RetryDelay must be greater than 0")
	}

	return &OutboxProcessor{
		repo:     repo,
		broker:   broker,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		handlers: make(map[string]Handler),
	}, nil
}

// Register binds a handler to an event type, replacing any previous one.
func (p *OutboxProcessor) Register(eventType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = h
}

func (p *OutboxProcessor) handler(eventType string) (Handler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handlers[eventType]
	return h, ok
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "batch_size", p.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch claims one batch of due events and runs them. It returns the
// number of events claimed.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return 0, fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"retry_count", event.RetryCount)
		}
	}

	return len(events), nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	h, ok := p.handler(event.EventType)
	if !ok {
		return p.deadLetter(ctx, event, ErrNoHandler)
	}

	if err := h(ctx, event); err != nil {
		return p.fail(ctx, event, err)
	}

	now := p.now()
	event.Status = model.OutboxStatusProcessed
	event.ProcessedAt = &now
	event.ErrorMessage = nil
	event.RetryAt = nil
	if err := p.repo.UpdateStatus(ctx, event); err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("update_event_status", "error").Inc()
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	p.metrics.OutboxEventsProcessed.Inc()

	p.publish(ctx, event)
	return nil
}

// fail schedules a retry with linear backoff, or dead-letters the event once
// the attempts are exhausted.
func (p *OutboxProcessor) fail(ctx context.Context, event *model.OutboxEvent, cause error) error {
	p.metrics.OutboxEventsFailed.Inc()
	event.RetryCount++
	if event.RetryCount >= p.config.RetryAttempts {
		return p.deadLetter(ctx, event, cause)
	}

	msg := cause.Error()
	retryAt := p.now().Add(time.Duration(event.RetryCount) * p.config.RetryDelay)
	event.Status = model.OutboxStatusRetry
	event.ErrorMessage = &msg
	event.RetryAt = &retryAt
	if err := p.repo.UpdateStatus(ctx, event); err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("update_event_status", "error").Inc()
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	return cause
}

func (p *OutboxProcessor) deadLetter(ctx context.Context, event *model.OutboxEvent, cause error) error {
	msg := cause.Error()
	event.Status = model.OutboxStatusFailed
	event.ErrorMessage = &msg
	event.RetryAt = nil
	if err := p.repo.MoveToDeadLetter(ctx, event); err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("move_to_dead_letter", "error").Inc()
		return fmt.Errorf("failed to move event to dead letter: %w", err)
	}
	p.metrics.OutboxEventsDeadLetter.Inc()
	p.logger.Warn("Event moved to dead letter",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"error", msg)
	return cause
}

// publish fans processed events out to subscribers. Failures only log.
func (p *OutboxProcessor) publish(ctx context.Context, event *model.OutboxEvent) {
	if p.broker == nil || p.config.Channel == "" {
		return
	}
	msg := messaging.Message{ID: event.ID.String(), Type: event.EventType, Payload: event.Payload}
	if err := p.broker.Publish(ctx, p.config.Channel, msg); err != nil {
		p.logger.Warn("Failed to publish processed event",
			"event_id", event.ID.String(),
			"channel", p.config.Channel,
			"error", err.Error())
	}
}
