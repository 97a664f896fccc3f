package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingExpired   = "booking_expired"
	EventPaymentConfirmed = "payment_confirmed"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     int64     `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	UserID        int64     `json:"user_id"`
	Email         string    `json:"email,omitempty"`
	Status        string    `json:"status"`
	TotalPrice    int64     `json:"total_price"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	ExpiredPaid   time.Time `json:"expired_paid"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
