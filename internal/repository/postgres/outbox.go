package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

// processingTimeout releases events claimed by a worker that died mid-batch.
const processingTimeout = 5 * time.Minute

const outboxColumns = `
	id, event_type, payload, status, error_message, retry_count, retry_at,
	processed_at, created_at, updated_at`

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingEventsWithLock claims due events by flipping them to PROCESSING
// under SKIP LOCKED, so concurrent workers never receive the same event.
func (r *outboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = 'PROCESSING', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE (status IN ('PENDING', 'RETRY') AND (retry_at IS NULL OR retry_at <= NOW()))
			OR (status = 'PROCESSING' AND updated_at < $2)
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	var events []*model.OutboxEvent
	stale := time.Now().UTC().Add(-processingTimeout)
	if err := r.db.SelectContext(ctx, &events, query, limit, stale); err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, event *model.OutboxEvent) error {
	return updateOutboxStatus(ctx, r.db, event)
}

func updateOutboxStatus(ctx context.Context, db execer, event *model.OutboxEvent) error {
	query := `
		UPDATE outbox_events
		SET status = $1,
			error_message = $2,
			retry_count = $3,
			retry_at = $4,
			processed_at = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	result, err := db.ExecContext(ctx, query,
		event.Status,
		event.ErrorMessage,
		event.RetryCount,
		event.RetryAt,
		event.ProcessedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	return expectRows(result)
}

// MoveToDeadLetter copies the event into the dead-letter table and marks it
// FAILED in one transaction.
func (r *outboxRepository) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO outbox_events_deadletter (
				event_id, event_type, payload, error_message,
				retry_count, last_retry_at, created_at
			) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`
		if _, err := tx.ExecContext(ctx, query, event.ID, event.EventType, []byte(event.Payload),
			event.ErrorMessage, event.RetryCount); err != nil {
			return fmt.Errorf("failed to insert dead letter: %w", err)
		}
		event.Status = model.OutboxStatusFailed
		return updateOutboxStatus(ctx, tx, event)
	})
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'PROCESSED'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
