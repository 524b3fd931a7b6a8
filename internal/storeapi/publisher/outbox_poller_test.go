package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	r "github.com/fjod/goldshop/internal/storeapi/repository"
)

type MockRepository struct {
	mu           sync.Mutex
	OutboxEvents []*r.OutboxEvent
	GetErr       error
	MarkErr      error
	ProcessedIDs []int
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var out []*r.OutboxEvent
	for _, ev := range m.OutboxEvents {
		if !m.processed(ev.ID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

func (m *MockRepository) processed(id int) bool {
	for _, p := range m.ProcessedIDs {
		if p == id {
			return true
		}
	}
	return false
}

func (m *MockRepository) Processed() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.ProcessedIDs...)
}

type WriterMock struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	failKeys map[string]bool
}

func (w *WriterMock) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, msg := range msgs {
		if w.failKeys[string(msg.Key)] {
			return errors.New("broker unavailable")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *WriterMock) Close() error { return nil }

func testEvent(id int, playerID string) *r.OutboxEvent {
	return &r.OutboxEvent{
		ID:          id,
		AggregateId: playerID,
		EventType:   r.EventPurchaseLogged,
		Payload:     json.RawMessage(fmt.Sprintf(`{"log_id":%d,"player_id":%q}`, id, playerID)),
		CreatedAt:   time.Now(),
	}
}

func newTestPoller(repo OutboxRepository, writer MessageWriter) *OutboxPoller {
	return &OutboxPoller{
		timeout:   time.Second,
		eventTick: 10 * time.Millisecond,
		repo:      repo,
		writer:    writer,
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{testEvent(1, "12345"), testEvent(2, "67890")}}
	writer := &WriterMock{}
	poller := newTestPoller(repo, writer)

	assert.Equal(t, 2, poller.processUnpublishedEvents(context.Background()))
	assert.Equal(t, []int{1, 2}, repo.Processed())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, "12345", string(writer.messages[0].Key))
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, r.EventPurchaseLogged, string(writer.messages[0].Headers[0].Value))

	// nothing left on the next tick
	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
}

func TestProcessUnpublishedEvents_FailedPublishStaysInOutbox(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{testEvent(1, "12345"), testEvent(2, "67890")}}
	writer := &WriterMock{failKeys: map[string]bool{"12345": true}}
	poller := newTestPoller(repo, writer)

	assert.Equal(t, 1, poller.processUnpublishedEvents(context.Background()))
	assert.Equal(t, []int{2}, repo.Processed())

	writer.failKeys = nil
	assert.Equal(t, 1, poller.processUnpublishedEvents(context.Background()))
	assert.Equal(t, []int{2, 1}, repo.Processed())
}

func TestProcessUnpublishedEvents_RepositoryErrors(t *testing.T) {
	repo := &MockRepository{GetErr: errors.New("database connection error")}
	writer := &WriterMock{}
	poller := newTestPoller(repo, writer)

	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
	assert.Empty(t, writer.messages)

	repo = &MockRepository{OutboxEvents: []*r.OutboxEvent{testEvent(1, "12345")}, MarkErr: errors.New("update failed")}
	poller = newTestPoller(repo, writer)
	assert.Equal(t, 0, poller.processUnpublishedEvents(context.Background()))
	assert.Len(t, writer.messages, 1)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{testEvent(1, "12345")}}
	poller := newTestPoller(repo, &WriterMock{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(repo.Processed()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func setupKafka(t *testing.T) (string, func()) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	createTopic(t, brokerAddr, PurchaseLogTopic)

	// Give Kafka time to fully initialize the topic
	time.Sleep(5 * time.Second)

	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{testEvent(1, "12345")}}
	poller := NewOutboxPoller(repo, brokerAddr)
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    PurchaseLogTopic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "12345", payload["player_id"])

	require.Eventually(t, func() bool { return len(repo.Processed()) == 1 }, 5*time.Second, 50*time.Millisecond)
}
