package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/service/notifications"
	"github.com/Domenick1991/skyticket/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, userID int64, input booking.CreateBookingInput) (*booking.BookingSummary, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingSummary), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBookingDetail(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ReapExpired(ctx context.Context, userID *int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) ConfirmPayment(ctx context.Context, n payment.ProviderNotification) (*domain.Booking, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockPaymentUseCase) ConfirmFakePayment(ctx context.Context, userID, bookingID int64, input payment.FakePaymentInput) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockPaymentUseCase) CreateProviderCheckout(ctx context.Context, userID, bookingID int64, method string) (*payment.CheckoutResult, error) {
	args := m.Called(ctx, userID, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutResult), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockFlightUseCase) Favorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) SearchTickets(ctx context.Context, query flights.SearchQuery) (*flights.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.SearchResult), args.Error(1)
}

type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) List(ctx context.Context, userID int64, query notifications.ListQuery) (*notifications.Page, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notifications.Page), args.Error(1)
}

func (m *MockNotificationUseCase) MarkRead(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SessionUser(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

type testRouter struct {
	engine        *gin.Engine
	bookings      *MockBookingUseCase
	payments      *MockPaymentUseCase
	flights       *MockFlightUseCase
	notifications *MockNotificationUseCase
	sessions      *MockSessionStore
}

// newTestRouter builds the full router where the bearer token "valid" belongs to user 7.
func newTestRouter() *testRouter {
	gin.SetMode(gin.TestMode)
	r := &testRouter{
		bookings:      &MockBookingUseCase{},
		payments:      &MockPaymentUseCase{},
		flights:       &MockFlightUseCase{},
		notifications: &MockNotificationUseCase{},
		sessions:      &MockSessionStore{},
	}
	r.sessions.On("SessionUser", mock.Anything, "valid").Return(int64(7), nil).Maybe()
	r.sessions.On("SessionUser", mock.Anything, mock.Anything).Return(int64(0), domain.ErrUnauthenticated).Maybe()

	r.engine = NewRouter(Handlers{
		Bookings:      NewBookingHandler(r.bookings),
		Payments:      NewPaymentHandler(r.payments),
		Flights:       NewFlightHandler(r.flights),
		Notifications: NewNotificationHandler(r.notifications),
	}, r.sessions)
	return r
}

func (r *testRouter) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer valid")
	}

	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	return w
}

// authedContext returns a test context that already passed the auth middleware as userID.
func authedContext(w *httptest.ResponseRecorder, req *http.Request, userID int64) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(userIDKey, userID)
	return c
}
