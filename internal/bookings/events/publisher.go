package events

import (
	"context"

	"wanderlust/pkg/kafka"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"
	"wanderlust/pkg/model"
)

const (
	source        = "bookings"
	schemaVersion = "1"
)

// messagePublisher is satisfied by *kafka.Producer.
type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher emits booking lifecycle events keyed by listing id, so all
// events of one listing land on one partition in order.
type KafkaPublisher struct {
	producer messagePublisher
}

func NewKafkaPublisher(producer messagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ListingID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSource(source).
		WithSchemaVersion(schemaVersion).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// LogPublisher is used when Kafka is disabled.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event model.BookingEvent) error {
	p.log.Debug("Booking event (kafka disabled)",
		"type", event.Type,
		"booking_id", event.BookingID,
		"listing_id", event.ListingID,
	)
	return nil
}
