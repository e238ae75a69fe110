package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

// outcome waits for msg to be acked or nacked.
func outcome(t *testing.T, msg *message.Message) string {
	t.Helper()

	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack or nack")

		return ""
	}
}

func startConsumer(t *testing.T, sub message.Subscriber, handler messaging.Handler[testEvent]) *messaging.Consumer[testEvent] {
	t.Helper()

	consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())
	require.NoError(t, consumer.Start(context.Background()))
	t.Cleanup(func() { _ = consumer.Shutdown() })

	return consumer
}

func TestConsumer_Start(t *testing.T) {
	t.Run("reports its topic", func(t *testing.T) {
		consumer := startConsumer(t, newMockSubscriber(), func(context.Context, *testEvent) error { return nil })

		assert.Equal(t, "test.topic", consumer.Topic())
	})

	t.Run("returns error when subscribe fails and can still shut down", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(sub, "test.topic",
			func(context.Context, *testEvent) error { return nil }, zap.NewNop())

		assert.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		sub := newMockSubscriber()
		received := make(chan *testEvent, 1)

		startConsumer(t, sub, func(ctx context.Context, event *testEvent) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			received <- event

			return nil
		})

		payload, _ := json.Marshal(&testEvent{ID: "123", Name: "test"})
		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))

		event := <-received
		assert.Equal(t, "123", event.ID)
		assert.Equal(t, "test", event.Name)
	})

	t.Run("drops undecodable payloads", func(t *testing.T) {
		sub := newMockSubscriber()
		called := false

		startConsumer(t, sub, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))
		assert.False(t, called)
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := newMockSubscriber()

		startConsumer(t, sub, func(context.Context, *testEvent) error {
			return errors.New("handler error")
		})

		payload, _ := json.Marshal(&testEvent{ID: "123"})
		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		assert.Equal(t, "nack", outcome(t, msg))
	})
}

func TestConsumer_GoChannelRoundTrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, messaging.NewZapLoggerAdapter(zap.NewNop()))
	t.Cleanup(func() { _ = pubSub.Close() })

	received := make(chan *testEvent, 1)

	startConsumer(t, pubSub, func(_ context.Context, event *testEvent) error {
		received <- event

		return nil
	})

	publish := messaging.NewPublishFunc[testEvent](pubSub, "test.topic")
	require.NoError(t, publish(context.Background(), &testEvent{ID: "42", Name: "round trip"}))

	select {
	case event := <-received:
		assert.Equal(t, "42", event.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
