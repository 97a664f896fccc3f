package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender turns booking events into outgoing customer messages. Delivery is a log line for now.
type Sender struct {
	log *logrus.Entry
}

func NewSender() *Sender {
	return &Sender{log: logrus.WithField("component", "email")}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, err := Subject(event)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"to":           event.Email,
		"user_id":      event.UserID,
		"booking_code": event.BookingCode,
		"event":        event.Type,
	}).Info(subject)
	return nil
}

func Subject(event kafka.BookingEvent) (string, error) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s created, complete payment before %s", event.BookingCode, event.ExpiredPaid.Format("2006-01-02 15:04 MST")), nil
	case kafka.EventPaymentConfirmed:
		return fmt.Sprintf("Payment for booking %s received", event.BookingCode), nil
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Booking %s was canceled, the payment deadline has passed", event.BookingCode), nil
	default:
		return "", fmt.Errorf("unknown event type %q", event.Type)
	}
}
