package payment

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Finalize(ctx context.Context, params repository.FinalizeParams) (*domain.Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) SetPaymentURL(ctx context.Context, id int64, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCheckoutProvider struct {
	mock.Mock
}

func (m *MockCheckoutProvider) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquirePaymentLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, bookingID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) ReleasePaymentLock(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// memoryPayments mimics the transactional Finalize of the Postgres repository.
type memoryPayments struct {
	mu       sync.Mutex
	bookings map[int64]*domain.Booking
	payments map[int64]domain.Payment
	nextID   int64
}

func newMemoryPayments(bookings ...domain.Booking) *memoryPayments {
	m := &memoryPayments{bookings: make(map[int64]*domain.Booking), payments: make(map[int64]domain.Payment)}
	for i := range bookings {
		b := bookings[i]
		m.bookings[b.ID] = &b
	}
	return m
}

func (m *memoryPayments) Finalize(_ context.Context, params repository.FinalizeParams) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[params.BookingID]
	if !ok || (params.OwnerID != nil && *params.OwnerID != b.UserID) {
		return nil, domain.ErrNotFound
	}
	if b.Status.IsFinal() {
		return nil, domain.ErrAlreadyFinalized
	}
	if b.Expired(params.Now) {
		b.Status = domain.BookingStatusCanceled
		copied := *b
		return &copied, domain.ErrBookingExpired
	}
	if params.Amount != nil && *params.Amount != b.TotalPrice {
		return nil, domain.ErrAmountMismatch
	}
	if _, exists := m.payments[b.ID]; exists {
		return nil, domain.ErrAlreadyFinalized
	}

	m.nextID++
	payment := domain.Payment{ID: m.nextID, BookingID: b.ID, Name: params.Method, PaidAt: params.Now}
	m.payments[b.ID] = payment
	b.Status = domain.BookingStatusPaid

	copied := *b
	copied.Payment = &payment
	return &copied, nil
}
