package publisher

import (
	"context"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

type mockOrderRepo struct {
	events      []*repository.OutboxEvent
	fetchErr    error
	markErr     error
	processed   []int64
	fetchCalled int
}

func (m *mockOrderRepo) CreateOrder(context.Context, *domain.Order) error { return nil }

func (m *mockOrderRepo) GetOrder(context.Context, int64) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) ListOrdersByUser(context.Context, int64) ([]*domain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	m.fetchCalled++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var pending []*repository.OutboxEvent
	for _, ev := range m.events {
		if ev.ProcessedAt == nil {
			pending = append(pending, ev)
		}
	}
	return pending, nil
}

func (m *mockOrderRepo) MarkEventProcessed(_ context.Context, id int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	now := time.Now()
	for _, ev := range m.events {
		if ev.ID == id {
			ev.ProcessedAt = &now
		}
	}
	m.processed = append(m.processed, id)
	return nil
}

type captureWriter struct {
	messages []kafkaGo.Message
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func newTestEvent(id int64) *repository.OutboxEvent {
	return &repository.OutboxEvent{
		ID:          id,
		EventID:     "11111111-2222-3333-4444-555555555555",
		EventType:   "order.placed",
		AggregateID: "42",
		Payload:     []byte(`{"order_id":42}`),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	repo := &mockOrderRepo{events: []*repository.OutboxEvent{newTestEvent(1), newTestEvent(2)}}
	writer := &captureWriter{}
	poller := &OutboxPoller{tick: time.Millisecond, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte("42"), writer.messages[0].Key)
	assert.Equal(t, []byte(`{"order_id":42}`), writer.messages[0].Value)
	require.Len(t, writer.messages[0].Headers, 2)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, []byte("order.placed"), writer.messages[0].Headers[0].Value)

	assert.Equal(t, []int64{1, 2}, repo.processed)
}

func TestProcessUnpublishedEvents_FailedPublishIsRetriedNextTick(t *testing.T) {
	repo := &mockOrderRepo{events: []*repository.OutboxEvent{newTestEvent(1)}}
	writer := &captureWriter{err: assert.AnError}
	poller := &OutboxPoller{tick: time.Millisecond, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, repo.processed)

	// broker recovers, next tick drains the event
	writer.err = nil
	poller.processUnpublishedEvents(context.Background())
	assert.Equal(t, []int64{1}, repo.processed)
	assert.Len(t, writer.messages, 1)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := &mockOrderRepo{}
	poller := &OutboxPoller{tick: time.Millisecond, repo: repo, writer: &captureWriter{}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancel")
	}
	assert.Greater(t, repo.fetchCalled, 0)
}
