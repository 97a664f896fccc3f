package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrNotFound               = errors.New("not found")
	ErrPassengerCountMismatch = errors.New("total number of passengers does not match the provided passenger details")
	ErrInvalidPassengerData   = errors.New("invalid passenger data")
	ErrInvalidRoundTrip       = errors.New("return flight does not match the departure route")
	ErrAlreadyFinalized       = errors.New("booking is already finalized")
	ErrBookingExpired         = fmt.Errorf("booking payment deadline has passed: %w", ErrAlreadyFinalized)
	ErrAmountMismatch         = errors.New("paid amount does not match booking total")
	ErrPaymentNotSuccessful   = errors.New("transaction is not successful")
	ErrInvalidReference       = errors.New("invalid booking reference")
	ErrInvalidSignature       = errors.New("invalid notification signature")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidPaymentDetails  = errors.New("payment method details are incomplete")
	ErrPaymentProvider        = errors.New("payment provider error")
	ErrUnauthenticated        = errors.New("user is not authenticated")
	ErrUnauthorized           = errors.New("operation is forbidden for user")
)

// InvalidPassengerDataError names the passenger record and field that failed validation.
type InvalidPassengerDataError struct {
	Index int
	Field string
}

func (e *InvalidPassengerDataError) Error() string {
	return fmt.Sprintf("passenger %d: field %q is missing or malformed", e.Index+1, e.Field)
}

func (e *InvalidPassengerDataError) Unwrap() error {
	return ErrInvalidPassengerData
}
