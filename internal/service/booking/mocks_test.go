package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking, notification *domain.Notification) error {
	args := m.Called(ctx, booking, notification)
	return args.Error(0)
}

func (m *MockBookingRepository) ExpireUnpaid(ctx context.Context, userID *int64, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) SetPaymentURL(ctx context.Context, id int64, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

type MockTicketSource struct {
	mock.Mock
}

func (m *MockTicketSource) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTicket(id int64, from, to int64, price int64) *domain.Ticket {
	return &domain.Ticket{
		ID: id,
		Flight: domain.Flight{
			ID:               id * 10,
			FlightNumber:     "GA-" + string(rune('A'+id)),
			DepartureAirport: domain.Airport{ID: from},
			ArrivalAirport:   domain.Airport{ID: to},
		},
		SeatClass: domain.SeatClass{ID: 1, Type: "ECONOMY"},
		Price:     price,
	}
}

func validPassenger(ageGroup string) PassengerInput {
	return PassengerInput{
		Title:          "Mr",
		FullName:       "John Smith",
		BirthDate:      "1990-04-12",
		Nationality:    "Indonesia",
		IdentityType:   "passport",
		IdentityNumber: "A1234567",
		IssuingCountry: "Indonesia",
		ExpiredDate:    "2030-01-01",
		AgeGroup:       ageGroup,
	}
}
