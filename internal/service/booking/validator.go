package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
)

type TicketSource interface {
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
}

type PassengerInput struct {
	Title          string `json:"title"`
	FullName       string `json:"fullName"`
	FamilyName     string `json:"familyName"`
	BirthDate      string `json:"birthDate"`
	Nationality    string `json:"nationality"`
	IdentityType   string `json:"identityType"`
	IdentityNumber string `json:"identityNumber"`
	IssuingCountry string `json:"issuingCountry"`
	ExpiredDate    string `json:"expiredDate"`
	AgeGroup       string `json:"ageGroup"`
}

type CreateBookingInput struct {
	TripType          string           `json:"-"`
	DepartureTicketID int64            `json:"departureTicketId"`
	ReturnTicketID    *int64           `json:"returnTicketId"`
	Adults            int              `json:"adult"`
	Children          int              `json:"child"`
	Infants           int              `json:"baby"`
	Passengers        []PassengerInput `json:"passenger"`
	Donation          bool             `json:"donation"`
}

// ValidatedBooking is a booking request whose tickets have been resolved.
type ValidatedBooking struct {
	TripType   domain.TripType
	Departure  *domain.Ticket
	Return     *domain.Ticket
	Adults     int
	Children   int
	Infants    int
	Passengers []domain.Passenger
	Donation   bool
}

type Validator struct {
	tickets TicketSource
}

func NewValidator(tickets TicketSource) *Validator {
	return &Validator{tickets: tickets}
}

// Validate rejects malformed requests before any ticket lookup and never writes.
func (v *Validator) Validate(ctx context.Context, input CreateBookingInput) (*ValidatedBooking, error) {
	tripType, ok := domain.ParseTripType(input.TripType)
	if !ok {
		return nil, fmt.Errorf("%w: trip type must be %q or %q", domain.ErrInvalidRequest, domain.TripTypeSingle, domain.TripTypeRound)
	}
	if input.DepartureTicketID <= 0 {
		return nil, fmt.Errorf("%w: departureTicketId is required", domain.ErrInvalidRequest)
	}
	if tripType == domain.TripTypeRound && (input.ReturnTicketID == nil || *input.ReturnTicketID <= 0) {
		return nil, fmt.Errorf("%w: returnTicketId is required for round trips", domain.ErrInvalidRequest)
	}
	if input.Adults < 1 || input.Children < 0 || input.Infants < 0 {
		return nil, fmt.Errorf("%w: at least one adult is required and passenger counts cannot be negative", domain.ErrInvalidRequest)
	}
	if len(input.Passengers) != input.Adults+input.Children+input.Infants {
		return nil, domain.ErrPassengerCountMismatch
	}

	passengers := make([]domain.Passenger, 0, len(input.Passengers))
	for i, p := range input.Passengers {
		passenger, err := parsePassenger(i, p)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, passenger)
	}

	departure, err := v.tickets.GetTicket(ctx, input.DepartureTicketID)
	if err != nil {
		return nil, fmt.Errorf("departure ticket %d: %w", input.DepartureTicketID, err)
	}

	validated := &ValidatedBooking{
		TripType:   tripType,
		Departure:  departure,
		Adults:     input.Adults,
		Children:   input.Children,
		Infants:    input.Infants,
		Passengers: passengers,
		Donation:   input.Donation,
	}

	if tripType == domain.TripTypeRound {
		ret, err := v.tickets.GetTicket(ctx, *input.ReturnTicketID)
		if err != nil {
			return nil, fmt.Errorf("return ticket %d: %w", *input.ReturnTicketID, err)
		}
		if !isReturnLeg(departure.Flight, ret.Flight) {
			return nil, domain.ErrInvalidRoundTrip
		}
		validated.Return = ret
	}

	return validated, nil
}

func isReturnLeg(out, back domain.Flight) bool {
	return out.DepartureAirport.ID == back.ArrivalAirport.ID &&
		out.ArrivalAirport.ID == back.DepartureAirport.ID
}

func parsePassenger(index int, p PassengerInput) (domain.Passenger, error) {
	required := []struct {
		field string
		value string
	}{
		{"title", p.Title},
		{"fullName", p.FullName},
		{"birthDate", p.BirthDate},
		{"nationality", p.Nationality},
		{"identityType", p.IdentityType},
		{"identityNumber", p.IdentityNumber},
		{"issuingCountry", p.IssuingCountry},
		{"expiredDate", p.ExpiredDate},
		{"ageGroup", p.AgeGroup},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Passenger{}, &domain.InvalidPassengerDataError{Index: index, Field: r.field}
		}
	}

	birthDate, err := parseDate(p.BirthDate)
	if err != nil {
		return domain.Passenger{}, &domain.InvalidPassengerDataError{Index: index, Field: "birthDate"}
	}
	expiredDate, err := parseDate(p.ExpiredDate)
	if err != nil {
		return domain.Passenger{}, &domain.InvalidPassengerDataError{Index: index, Field: "expiredDate"}
	}

	return domain.Passenger{
		Title:          strings.TrimSpace(p.Title),
		FullName:       strings.TrimSpace(p.FullName),
		FamilyName:     strings.TrimSpace(p.FamilyName),
		BirthDate:      birthDate,
		Nationality:    strings.TrimSpace(p.Nationality),
		IdentityType:   strings.TrimSpace(p.IdentityType),
		IdentityNumber: strings.TrimSpace(p.IdentityNumber),
		IssuingCountry: strings.TrimSpace(p.IssuingCountry),
		ExpiredDate:    expiredDate,
		AgeGroup:       strings.TrimSpace(p.AgeGroup),
	}, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
