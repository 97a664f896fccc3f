package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusUnpaid   BookingStatus = "UNPAID"
	BookingStatusPaid     BookingStatus = "PAID"
	BookingStatusCanceled BookingStatus = "CANCELED"
)

// IsFinal reports whether no further transition is allowed.
func (s BookingStatus) IsFinal() bool {
	return s == BookingStatusPaid || s == BookingStatusCanceled
}

func ParseBookingStatus(raw string) (BookingStatus, bool) {
	switch status := BookingStatus(strings.ToUpper(strings.TrimSpace(raw))); status {
	case BookingStatusUnpaid, BookingStatusPaid, BookingStatusCanceled:
		return status, true
	default:
		return "", false
	}
}

type TripType string

const (
	TripTypeSingle TripType = "singletrip"
	TripTypeRound  TripType = "roundtrip"
)

func ParseTripType(raw string) (TripType, bool) {
	switch trip := TripType(strings.ToLower(strings.TrimSpace(raw))); trip {
	case TripTypeSingle, TripTypeRound:
		return trip, true
	default:
		return "", false
	}
}

type Booking struct {
	ID                int64
	UserID            int64
	BookingCode       string
	Status            BookingStatus
	IsRoundTrip       bool
	DepartureTicketID int64
	ReturnTicketID    *int64
	Adults            int
	Children          int
	Infants           int
	SeatCount         int
	TotalPrice        int64
	BookingTax        int64
	Donation          int64
	URLPayment        *string
	ExpiredPaid       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	DepartureTicket *Ticket
	ReturnTicket    *Ticket
	Passengers      []Passenger
	Payment         *Payment
}

// Expired reports whether an unpaid booking has outlived its payment deadline.
func (b *Booking) Expired(now time.Time) bool {
	return b.Status == BookingStatusUnpaid && now.After(b.ExpiredPaid)
}

// Subtotal is the fare part of the total, without tax and donation.
func (b *Booking) Subtotal() int64 {
	return b.TotalPrice - b.BookingTax - b.Donation
}

func (b *Booking) PassengerCount() int {
	return b.Adults + b.Children + b.Infants
}

type Passenger struct {
	ID             int64
	BookingID      int64
	Title          string
	FullName       string
	FamilyName     string
	BirthDate      time.Time
	Nationality    string
	IdentityType   string
	IdentityNumber string
	IssuingCountry string
	ExpiredDate    time.Time
	AgeGroup       string
}

// BookingFilter narrows a user's booking history.
type BookingFilter struct {
	Search string
	Date   *time.Time
	Status *BookingStatus
}
