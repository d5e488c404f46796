// Package events keeps recommendations fresh by reacting to booking events.
package events

import (
	"context"

	"wanderlust/internal/recommendations/service"
	"wanderlust/pkg/kafka"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"
)

// BookingInvalidator drops a user's cached recommendations whenever one of
// their bookings is confirmed or cancelled.
func BookingInvalidator(recs service.RecommendationService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		eventType := msg.GetEventType()
		if eventType == "" {
			eventType = event.Type
		}
		if eventType != model.EventBookingConfirmed && eventType != model.EventBookingCancelled {
			log.Debug("Ignoring event", "event_type", eventType, "event_id", msg.GetEventID())
			return nil
		}
		if event.UserID == "" {
			return kafka.NewPermanentError("booking event without user id", nil)
		}

		if err := recs.Invalidate(ctx, event.UserID); err != nil {
			return kafka.NewTransientError("failed to invalidate recommendations", err)
		}
		log.Info("Recommendations invalidated",
			"user_id", event.UserID,
			"event_type", eventType,
			"booking_id", event.BookingID,
			"correlation_id", msg.GetCorrelationID(),
		)
		return nil
	}
}
