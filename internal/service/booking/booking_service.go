package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/metrics"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/pricing"
	"github.com/avast/retry-go"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*BookingSummary, error)
	ListBookings(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error)
	GetBookingDetail(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	ReapExpired(ctx context.Context, userID *int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	validator          *Validator
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	paymentWindow      time.Duration
	donationAmount     int64
	infantsOccupySeat  bool
	codeAttempts       uint
	codeRetryDelay     time.Duration
	generateCode       func() (string, error)
	now                func() time.Time
}

type LegSummary struct {
	TicketID  int64         `json:"ticket_id"`
	Fare      int64         `json:"fare"`
	SeatClass string        `json:"seat_class"`
	Flight    domain.Flight `json:"flight"`
}

type BookingSummary struct {
	ID              int64                `json:"id"`
	BookingCode     string               `json:"booking_code"`
	Status          domain.BookingStatus `json:"status"`
	TripType        domain.TripType      `json:"trip_type"`
	TotalPassengers int                  `json:"total_passengers"`
	SeatCount       int                  `json:"seat_count"`
	Subtotal        int64                `json:"subtotal"`
	BookingTax      int64                `json:"booking_tax"`
	Donation        int64                `json:"donation"`
	TotalPrice      int64                `json:"total_price"`
	Departure       LegSummary           `json:"departure"`
	Return          *LegSummary          `json:"return,omitempty"`
	PaidBefore      time.Time            `json:"paid_before"`
	CreatedAt       time.Time            `json:"created_at"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithDonationAmount(amount int64) BookingServiceOption {
	return func(s *BookingService) {
		s.donationAmount = amount
	}
}

// WithInfantsOccupySeat makes infants count towards the seats a booking declares.
func WithInfantsOccupySeat(occupy bool) BookingServiceOption {
	return func(s *BookingService) {
		s.infantsOccupySeat = occupy
	}
}

func WithCodeAttempts(attempts uint) BookingServiceOption {
	return func(s *BookingService) {
		if attempts > 0 {
			s.codeAttempts = attempts
		}
	}
}

func WithCodeGenerator(gen func() (string, error)) BookingServiceOption {
	return func(s *BookingService) {
		s.generateCode = gen
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	tickets TicketSource,
	producer Producer,
	eventsTopic string,
	paymentWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:       bookings,
		validator:      NewValidator(tickets),
		producer:       producer,
		eventsTopic:    eventsTopic,
		paymentWindow:  paymentWindow,
		donationAmount: 1000,
		codeAttempts:   5,
		codeRetryDelay: 10 * time.Millisecond,
		generateCode:   GenerateCode,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*BookingSummary, error) {
	validated, err := s.validator.Validate(ctx, input)
	if err != nil {
		return nil, err
	}

	var returnFare *int64
	if validated.Return != nil {
		fare := validated.Return.Fare()
		returnFare = &fare
	}
	quote := pricing.Calculate(pricing.Input{
		DepartureFare:  validated.Departure.Fare(),
		ReturnFare:     returnFare,
		Adults:         validated.Adults,
		Children:       validated.Children,
		Infants:        validated.Infants,
		Donation:       validated.Donation,
		DonationAmount: s.donationAmount,
	})

	createdAt := s.now()
	booking := &domain.Booking{
		UserID:            userID,
		IsRoundTrip:       validated.Return != nil,
		DepartureTicketID: validated.Departure.ID,
		Adults:            validated.Adults,
		Children:          validated.Children,
		Infants:           validated.Infants,
		SeatCount:         s.seatCount(validated),
		TotalPrice:        quote.Total,
		BookingTax:        quote.Tax,
		Donation:          quote.Donation,
		ExpiredPaid:       createdAt.Add(s.paymentWindow),
		CreatedAt:         createdAt,
		Passengers:        validated.Passengers,
	}
	if validated.Return != nil {
		id := validated.Return.ID
		booking.ReturnTicketID = &id
	}

	notification := &domain.Notification{
		Title:   "New Booking",
		Message: fmt.Sprintf("Successful in making a new booking, complete it before %s", booking.ExpiredPaid.UTC().Format(time.RFC3339)),
		Type:    domain.NotificationTransaction,
	}

	err = retry.Do(
		func() error {
			code, err := s.generateCode()
			if err != nil {
				return err
			}
			booking.BookingCode = code
			return s.bookings.Create(ctx, booking, notification)
		},
		retry.Context(ctx),
		retry.Attempts(s.codeAttempts),
		retry.Delay(s.codeRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, repository.ErrDuplicateBookingCode)
		}),
	)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateBookingCode) {
			return nil, fmt.Errorf("could not allocate a unique booking code: %w", err)
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	logger.WithContext(ctx).WithField("booking_code", booking.BookingCode).Info("booking created")
	if err := s.publish(ctx, kafka.EventBookingCreated, booking, ""); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("booking_code", booking.BookingCode).Warn("failed to publish booking_created event")
	}

	return newSummary(booking, validated, quote), nil
}

func (s *BookingService) seatCount(v *ValidatedBooking) int {
	seats := v.Adults + v.Children
	if s.infantsOccupySeat {
		seats += v.Infants
	}
	return seats
}

func newSummary(b *domain.Booking, v *ValidatedBooking, quote pricing.Quote) *BookingSummary {
	summary := &BookingSummary{
		ID:              b.ID,
		BookingCode:     b.BookingCode,
		Status:          b.Status,
		TripType:        v.TripType,
		TotalPassengers: b.PassengerCount(),
		SeatCount:       b.SeatCount,
		Subtotal:        quote.Subtotal,
		BookingTax:      quote.Tax,
		Donation:        quote.Donation,
		TotalPrice:      quote.Total,
		Departure:       legSummary(v.Departure),
		PaidBefore:      b.ExpiredPaid,
		CreatedAt:       b.CreatedAt,
	}
	if v.Return != nil {
		leg := legSummary(v.Return)
		summary.Return = &leg
	}
	return summary
}

func legSummary(t *domain.Ticket) LegSummary {
	return LegSummary{TicketID: t.ID, Fare: t.Fare(), SeatClass: t.SeatClass.Type, Flight: t.Flight}
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error) {
	if _, err := s.ReapExpired(ctx, &userID); err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, userID, filter)
}

func (s *BookingService) GetBookingDetail(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	if _, err := s.ReapExpired(ctx, &userID); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

// ReapExpired cancels unpaid bookings past their deadline. A nil userID sweeps every user.
func (s *BookingService) ReapExpired(ctx context.Context, userID *int64) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpireUnpaid(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return expired, nil
	}

	metrics.BookingsExpired.Add(float64(len(expired)))
	for i := range expired {
		if err := s.publish(ctx, kafka.EventBookingExpired, &expired[i], ""); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("booking_code", expired[i].BookingCode).Warn("failed to publish booking_expired event")
		}
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, method string) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		BookingCode:   booking.BookingCode,
		UserID:        booking.UserID,
		Status:        string(booking.Status),
		TotalPrice:    booking.TotalPrice,
		PaymentMethod: method,
		ExpiredPaid:   booking.ExpiredPaid,
		OccurredAt:    s.now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.BookingCode, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.BookingCode, event)
	}
	return nil
}

// ParseFilter builds a history filter from raw query values. Date is a calendar day (YYYY-MM-DD).
func ParseFilter(search, date, status string) (domain.BookingFilter, error) {
	filter := domain.BookingFilter{Search: strings.TrimSpace(search)}

	if date = strings.TrimSpace(date); date != "" {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return domain.BookingFilter{}, fmt.Errorf("%w: invalid date format", domain.ErrInvalidRequest)
		}
		filter.Date = &day
	}

	if strings.TrimSpace(status) != "" {
		parsed, ok := domain.ParseBookingStatus(status)
		if !ok {
			return domain.BookingFilter{}, fmt.Errorf("%w: invalid status %q", domain.ErrInvalidRequest, status)
		}
		filter.Status = &parsed
	}

	return filter, nil
}

var _ BookingUseCase = (*BookingService)(nil)
