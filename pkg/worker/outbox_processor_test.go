package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*model.OutboxEvent)
	return events, args.Error(1)
}

func (m *mockOutboxRepo) UpdateStatus(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOutboxRepo) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *mockBroker) Close() error { return nil }

var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func newProcessor(t *testing.T, repo *mockOutboxRepo, broker messaging.Broker) *OutboxProcessor {
	t.Helper()
	p, err := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
		Channel:       "appointment-notifications",
	}, logger.Nop(), metrics.NewMetrics("test", prometheus.NewRegistry()))
	require.NoError(t, err)
	p.now = func() time.Time { return fixedNow }
	return p
}

func newEvent(eventType string, retries int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    []byte(`{"kind":"confirmation"}`),
		Status:     model.OutboxStatusPending,
		RetryCount: retries,
	}
}

func TestNewOutboxProcessorRejectsBadConfig(t *testing.T) {
	_, err := NewOutboxProcessor(&mockOutboxRepo{}, nil, OutboxProcessorConfig{}, logger.Nop(),
		metrics.NewMetrics("test", prometheus.NewRegistry()))
	assert.Error(t, err)
}

func TestProcessBatchSuccessMarksProcessedAndPublishes(t *testing.T) {
	repo := &mockOutboxRepo{}
	broker := &mockBroker{}
	p := newProcessor(t, repo, broker)

	event := newEvent("appointment.notification.confirmation", 0)
	var handled int
	p.Register(event.EventType, func(ctx context.Context, e *model.OutboxEvent) error {
		handled++
		return nil
	})

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil
	})).Return(nil)
	broker.On("Publish", mock.Anything, "appointment-notifications", mock.MatchedBy(func(m messaging.Message) bool {
		return m.Type == event.EventType && m.ID == event.ID.String()
	})).Return(nil)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, handled)
	repo.AssertExpectations(t)
	broker.AssertExpectations(t)
}

func TestProcessBatchPublishFailureIsNotFatal(t *testing.T) {
	repo := &mockOutboxRepo{}
	broker := &mockBroker{}
	p := newProcessor(t, repo, broker)

	event := newEvent("appointment.notification.reminder", 0)
	p.Register(event.EventType, func(ctx context.Context, e *model.OutboxEvent) error { return nil })

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event).Return(nil).Once()
	broker.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutboxStatusProcessed, event.Status)
	repo.AssertExpectations(t)
}

func TestProcessBatchHandlerFailureSchedulesRetry(t *testing.T) {
	repo := &mockOutboxRepo{}
	p := newProcessor(t, repo, nil)

	event := newEvent("appointment.notification.cancellation", 1)
	p.Register(event.EventType, func(ctx context.Context, e *model.OutboxEvent) error {
		return errors.New("smtp unavailable")
	})

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("UpdateStatus", mock.Anything, event).Return(nil)

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.OutboxStatusRetry, event.Status)
	assert.Equal(t, 2, event.RetryCount)
	require.NotNil(t, event.RetryAt)
	assert.Equal(t, fixedNow.Add(2*time.Minute), *event.RetryAt)
	require.NotNil(t, event.ErrorMessage)
	assert.Equal(t, "smtp unavailable", *event.ErrorMessage)
	repo.AssertNotCalled(t, "MoveToDeadLetter", mock.Anything, mock.Anything)
}

func TestProcessBatchExhaustedRetriesDeadLetters(t *testing.T) {
	repo := &mockOutboxRepo{}
	p := newProcessor(t, repo, nil)

	event := newEvent("appointment.notification.reschedule", 2)
	p.Register(event.EventType, func(ctx context.Context, e *model.OutboxEvent) error {
		return errors.New("smtp unavailable")
	})

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("MoveToDeadLetter", mock.Anything, event).Return(nil)

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.OutboxStatusFailed, event.Status)
	assert.Equal(t, 3, event.RetryCount)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestProcessBatchUnknownEventTypeDeadLetters(t *testing.T) {
	repo := &mockOutboxRepo{}
	p := newProcessor(t, repo, nil)

	event := newEvent("patient.merged", 0)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("MoveToDeadLetter", mock.Anything, event).Return(nil)

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, event.ErrorMessage)
	assert.Equal(t, ErrNoHandler.Error(), *event.ErrorMessage)
}

func TestProcessBatchFetchError(t *testing.T) {
	repo := &mockOutboxRepo{}
	p := newProcessor(t, repo, nil)

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return(nil, errors.New("connection reset"))

	_, err := p.ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestOutboxCleanupUsesRetention(t *testing.T) {
	repo := &mockOutboxRepo{}
	w := NewOutboxCleanupWorker(repo, 24*time.Hour, time.Hour, logger.Nop())
	w.now = func() time.Time { return fixedNow }

	repo.On("DeleteProcessedBefore", mock.Anything, fixedNow.Add(-24*time.Hour)).Return(int64(4), nil)

	n, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
