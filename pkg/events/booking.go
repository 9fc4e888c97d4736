// Package events publishes booking lifecycle events to Kafka. Events are
// keyed by item id so every event of one item lands on the same partition.
package events

import (
	"context"
	"fmt"
	"time"

	"shareit/pkg/kafka"
	"shareit/pkg/middleware"
	"shareit/pkg/model"
)

const (
	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingRejected = "booking.rejected"

	schemaVersion = "1"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ItemID     string    `json:"item_id"`
	OwnerID    string    `json:"owner_id"`
	BookerID   string    `json:"booker_id"`
	StartTime  time.Time `json:"start"`
	EndTime    time.Time `json:"end"`
	Approved   *bool     `json:"approved"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		OwnerID:    b.OwnerID,
		BookerID:   b.BookerID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Approved:   b.Approved,
		OccurredAt: now.UTC(),
	}
}

type Publisher interface {
	PublishBooking(ctx context.Context, event BookingEvent) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer messagePublisher
	source   string
	timeout  time.Duration
}

func NewKafkaPublisher(producer *kafka.Producer, source string, timeout time.Duration) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		timeout:  timeout,
	}
}

// PublishBooking sends the event even when ctx was already cancelled: the
// booking is committed by the time an event is published. Request-scoped
// values such as the request id are kept.
func (p *kafkaPublisher) PublishBooking(ctx context.Context, event BookingEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	msg, err := kafka.NewMessage().
		WithKey(event.ItemID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBooking(context.Context, BookingEvent) error {
	return nil
}
