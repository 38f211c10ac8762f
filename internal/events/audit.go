package events

import (
	"context"

	"travelbook/pkg/kafka"
	"travelbook/pkg/logger"
)

// AuditHandler writes one structured log line per booking event.
// A payload that does not decode is permanent and goes to the DLQ.
func AuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event Event
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("malformed booking event", err)
		}
		if event.Type == "" || event.BookingID == "" {
			return kafka.NewPermanentError("booking event without type or booking id", nil)
		}

		attrs := []any{
			"event_id", msg.GetEventID(),
			"type", event.Type,
			"booking_id", event.BookingID,
			"user", event.UserID,
			"resource_id", event.ResourceID,
			"quantity", event.Quantity,
			"total_price", event.TotalPrice,
			"status", event.Status,
			"payment_status", event.PaymentStatus,
			"occurred_at", event.OccurredAt,
		}
		if id := msg.GetRequestID(); id != "" {
			attrs = append(attrs, logger.REQUEST_ID, id)
		}
		log.Info("booking audit", attrs...)
		return nil
	}
}
