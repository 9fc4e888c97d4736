package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/pkg/kafka"
	"shareit/pkg/middleware"
	"shareit/pkg/model"
)

type recordingProducer struct {
	messages []kafka.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestKafkaPublisher_PublishBooking(t *testing.T) {
	producer := &recordingProducer{}
	publisher := &kafkaPublisher{producer: producer, source: "shareit", timeout: time.Second}

	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	booking := &model.Booking{
		ID:        "b1",
		ItemID:    "i1",
		OwnerID:   "o1",
		BookerID:  "u1",
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-7")
	if err := publisher.PublishBooking(ctx, NewBookingEvent(BookingCreated, booking, now)); err != nil {
		t.Fatalf("PublishBooking() error: %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Key != "i1" {
		t.Errorf("key = %q, want item id", msg.Key)
	}
	if msg.GetEventType() != BookingCreated {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-7" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}

	var decoded BookingEvent
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if decoded.BookingID != "b1" || decoded.Approved != nil {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestKafkaPublisher_WrapsProducerError(t *testing.T) {
	brokerErr := errors.New("broker unreachable")
	publisher := &kafkaPublisher{producer: &recordingProducer{err: brokerErr}, source: "shareit", timeout: time.Second}

	err := publisher.PublishBooking(context.Background(), BookingEvent{Type: BookingApproved, ItemID: "i1"})
	if !errors.Is(err, brokerErr) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestNoopPublisher(t *testing.T) {
	if err := NewNoopPublisher().PublishBooking(context.Background(), BookingEvent{}); err != nil {
		t.Errorf("noop publisher returned %v", err)
	}
}
