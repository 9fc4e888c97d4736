package kafka

import (
	"testing"
	"time"
)

func TestMessageBuilder_Build(t *testing.T) {
	ts := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	payload := map[string]string{"booking_id": "b1"}

	msg, err := NewMessage().
		WithKey("item-1").
		WithValue(payload).
		WithEventType("booking.created").
		WithCorrelationID("req-42").
		WithSource("shareit").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if msg.Key != "item-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if msg.GetEventType() != "booking.created" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-42" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}
	if msg.GetEventID() == "" {
		t.Error("event id must be generated")
	}
	if msg.Headers[HeaderTimestamp] != "2030-01-02T03:04:05Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if decoded["booking_id"] != "b1" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected encoding error")
	}
}

func TestMessageBuilder_EmptyCorrelationIDSkipped(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue(1).WithCorrelationID("").Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := msg.Headers[HeaderCorrelationID]; ok {
		t.Error("empty correlation id must not be set")
	}
}
