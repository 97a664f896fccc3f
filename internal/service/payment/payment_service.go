package payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/metrics"
	"github.com/Domenick1991/skyticket/internal/provider"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/sirupsen/logrus"
)

type PaymentUseCase interface {
	ConfirmPayment(ctx context.Context, notification ProviderNotification) (*domain.Booking, error)
	ConfirmFakePayment(ctx context.Context, userID, bookingID int64, input FakePaymentInput) (*domain.Booking, error)
	CreateProviderCheckout(ctx context.Context, userID, bookingID int64, method string) (*CheckoutResult, error)
}

type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
}

type Locker interface {
	AcquirePaymentLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, bookingID int64) error
}

type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentURL(ctx context.Context, id int64, url string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ProviderNotification is the subset of the Midtrans HTTP notification the reconciler uses.
type ProviderNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
}

type CheckoutResult struct {
	CheckoutURL  string `json:"checkoutUrl"`
	SessionToken string `json:"sessionToken"`
	OrderID      string `json:"orderId"`
}

type PaymentService struct {
	payments           repository.PaymentRepository
	bookings           BookingStore
	users              UserReader
	provider           CheckoutProvider
	locker             Locker
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	serverKey          string
	verifySignature    bool
	clientBaseURL      string
	lockTTL            time.Duration
	now                func() time.Time
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

// WithSignatureVerification enables signature_key checks on provider notifications.
func WithSignatureVerification(serverKey string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.serverKey = serverKey
		s.verifySignature = serverKey != ""
	}
}

func WithClientBaseURL(url string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.clientBaseURL = strings.TrimRight(url, "/")
	}
}

func WithLockTTL(ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings BookingStore,
	users UserReader,
	checkout CheckoutProvider,
	locker Locker,
	producer Producer,
	eventsTopic string,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		payments:    payments,
		bookings:    bookings,
		users:       users,
		provider:    checkout,
		locker:      locker,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     30 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *PaymentService) ConfirmPayment(ctx context.Context, n ProviderNotification) (*domain.Booking, error) {
	if s.verifySignature {
		expected := provider.Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) != 1 {
			metrics.PaymentFailures.WithLabelValues("invalid_signature").Inc()
			return nil, domain.ErrInvalidSignature
		}
	}

	bookingID, err := ParseOrderReference(n.OrderID)
	if err != nil {
		metrics.PaymentFailures.WithLabelValues("invalid_reference").Inc()
		return nil, err
	}
	if !isSuccessful(n.TransactionStatus, n.FraudStatus) {
		metrics.PaymentFailures.WithLabelValues("not_successful").Inc()
		return nil, fmt.Errorf("%w: status %q", domain.ErrPaymentNotSuccessful, n.TransactionStatus)
	}
	amount, err := parseGrossAmount(n.GrossAmount)
	if err != nil {
		metrics.PaymentFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	method := n.PaymentType
	if method == "" {
		method = "midtrans"
	}
	return s.finalize(ctx, bookingID, nil, method, &amount)
}

func (s *PaymentService) ConfirmFakePayment(ctx context.Context, userID, bookingID int64, input FakePaymentInput) (*domain.Booking, error) {
	method, err := validateFakePayment(input, s.now())
	if err != nil {
		metrics.PaymentFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	return s.finalize(ctx, bookingID, &userID, string(method), nil)
}

// finalize serializes confirmations per booking with a short lock. The row lock and the unique
// payment constraint in the repository still decide the outcome when the lock is unavailable.
func (s *PaymentService) finalize(ctx context.Context, bookingID int64, ownerID *int64, method string, amount *int64) (*domain.Booking, error) {
	log := logger.WithContext(ctx).WithField("booking_id", bookingID)

	if s.locker != nil {
		acquired, err := s.locker.AcquirePaymentLock(ctx, bookingID, s.lockTTL)
		switch {
		case err != nil:
			log.WithError(err).Warn("payment lock unavailable, relying on row lock")
		case !acquired:
			metrics.PaymentFailures.WithLabelValues("in_progress").Inc()
			return nil, fmt.Errorf("%w: payment is already being processed", domain.ErrAlreadyFinalized)
		default:
			defer func() {
				if err := s.locker.ReleasePaymentLock(context.WithoutCancel(ctx), bookingID); err != nil {
					log.WithError(err).Warn("failed to release payment lock")
				}
			}()
		}
	}

	booking, err := s.payments.Finalize(ctx, repository.FinalizeParams{
		BookingID: bookingID,
		OwnerID:   ownerID,
		Method:    method,
		Amount:    amount,
		Now:       s.now(),
		Notification: domain.Notification{
			Title:   "Payment Successfully",
			Message: fmt.Sprintf("Payment for booking ID %d has been successfully.", bookingID),
			Type:    domain.NotificationTransaction,
		},
	})
	if err != nil {
		metrics.PaymentFailures.WithLabelValues(failureReason(err)).Inc()
		if errors.Is(err, domain.ErrBookingExpired) && booking != nil {
			metrics.BookingsExpired.Inc()
			s.publish(ctx, kafka.EventBookingExpired, booking, "")
		}
		return nil, err
	}

	metrics.PaymentsConfirmed.WithLabelValues(method).Inc()
	log.WithField("method", method).Info("payment confirmed")
	s.publish(ctx, kafka.EventPaymentConfirmed, booking, method)
	return booking, nil
}

func (s *PaymentService) CreateProviderCheckout(ctx context.Context, userID, bookingID int64, method string) (*CheckoutResult, error) {
	paymentMethod, err := checkoutMethod(method)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ErrNotFound
	}
	now := s.now()
	if booking.Status.IsFinal() {
		return nil, domain.ErrAlreadyFinalized
	}
	if booking.Expired(now) {
		return nil, domain.ErrBookingExpired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := domain.CheckoutRequest{
		OrderID:       OrderReference(booking.ID, now),
		Amount:        booking.TotalPrice,
		Method:        string(paymentMethod),
		CustomerName:  user.FullName,
		CustomerEmail: user.Email,
		CustomerPhone: user.PhoneNumber,
	}
	if s.clientBaseURL != "" {
		req.FinishURL = s.clientBaseURL + "/success"
	}

	session, err := s.provider.CreateCheckout(ctx, req)
	if err != nil {
		metrics.PaymentFailures.WithLabelValues("provider").Inc()
		logger.WithContext(ctx).WithError(err).WithField("booking_id", bookingID).Error("checkout session failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentProvider, err)
	}

	if err := s.bookings.SetPaymentURL(ctx, booking.ID, session.RedirectURL); err != nil {
		return nil, err
	}

	return &CheckoutResult{CheckoutURL: session.RedirectURL, SessionToken: session.Token, OrderID: req.OrderID}, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, booking *domain.Booking, method string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
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

	topics := []string{s.eventsTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.BookingCode, event); err != nil {
			logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{"topic": topic, "event": eventType}).Warn("failed to publish payment event")
			return
		}
	}
}

func isSuccessful(status, fraudStatus string) bool {
	switch strings.ToLower(status) {
	case "settlement":
		return true
	case "capture":
		return fraudStatus == "" || strings.EqualFold(fraudStatus, "accept")
	default:
		return false
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrBookingExpired):
		return "expired"
	case errors.Is(err, domain.ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidPaymentMethod), errors.Is(err, domain.ErrInvalidPaymentDetails), errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_input"
	default:
		return "internal"
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
