package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	kafka_config "shareit/pkg/kafka/config"
	"shareit/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().WithKey("item-1").WithValue(map[string]int{"n": 1}).WithEventType("booking.created").Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return msg
}

func TestNewProducer_Validation(t *testing.T) {
	log := logger.Discard()

	if _, err := NewProducer(nil, "t", "", log); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewProducer(&kafka_config.Config{}, "t", "", log); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("expected ErrNoBrokers, got %v", err)
	}
	if _, err := NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}}, "", "", log); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("expected ErrEmptyTopic, got %v", err)
	}
}

func TestProducer_PublishRunsMiddlewareInOrder(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "bookings"}

	var order []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "inner:"+msg.Topic)
		return next(ctx, msg)
	})

	if err := p.Publish(context.Background(), buildMessage(t)); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner:bookings" {
		t.Errorf("middleware order = %v", order)
	}
	if len(w.messages) != 1 || string(w.messages[0].Key) != "item-1" {
		t.Fatalf("written = %+v", w.messages)
	}
	if header(w.messages[0], HeaderEventType) != "booking.created" {
		t.Errorf("event type header missing")
	}
}

func TestProducer_PublishRejectsEmptyMessages(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "bookings"}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
}

func TestProducer_FailedPublishGoesToDLQ(t *testing.T) {
	brokerErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: brokerErr}, dlqWriter: dlq, topic: "bookings"}

	err := p.Publish(context.Background(), buildMessage(t))
	if !errors.Is(err, brokerErr) {
		t.Fatalf("expected broker error, got %v", err)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.messages))
	}
	if header(dlq.messages[0], HeaderOriginalTopic) != "bookings" {
		t.Errorf("original topic header missing")
	}
	if header(dlq.messages[0], HeaderDLQError) != brokerErr.Error() {
		t.Errorf("dlq error header = %q", header(dlq.messages[0], HeaderDLQError))
	}
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	dlq := &fakeWriter{}
	p := &Producer{writer: w, dlqWriter: dlq, topic: "bookings"}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !w.closed || !dlq.closed {
		t.Error("writers must be closed")
	}
	if err := p.Publish(context.Background(), buildMessage(t)); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
