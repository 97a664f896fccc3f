package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const settlementBody = `{
	"order_id": "BOOKING-5-1767225600",
	"transaction_status": "settlement",
	"gross_amount": "1101000.00",
	"payment_type": "gopay",
	"status_code": "200",
	"signature_key": "abc"
}`

func TestPaymentHandler_confirm(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	w := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments/midtrans/confirm", strings.NewReader(settlementBody))
	c.Request.Header.Set("Content-Type", "application/json")

	notification := payment.ProviderNotification{
		OrderID:           "BOOKING-5-1767225600",
		TransactionStatus: "settlement",
		GrossAmount:       "1101000.00",
		PaymentType:       "gopay",
		StatusCode:        "200",
		SignatureKey:      "abc",
	}
	mockService.On("ConfirmPayment", c.Request.Context(), notification).
		Return(&domain.Booking{ID: 5, BookingCode: "0A1B2C3D4E", Status: domain.BookingStatusPaid}, nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Payment confirmed and booking status updated successfully", resp["message"])
	assert.Equal(t, "PAID", resp["data"].(map[string]any)["status"])
	mockService.AssertExpectations(t)
}

func TestPaymentHandler_confirm_NoSessionNeeded(t *testing.T) {
	r := newTestRouter()
	r.payments.On("ConfirmPayment", mock.Anything, mock.Anything).
		Return(&domain.Booking{ID: 5, Status: domain.BookingStatusPaid}, nil)

	w := r.do(http.MethodPost, "/payments/midtrans/confirm", settlementBody, false)

	assert.Equal(t, http.StatusOK, w.Code)
	r.sessions.AssertNotCalled(t, "SessionUser", mock.Anything, mock.Anything)
}

func TestPaymentHandler_confirm_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"duplicate delivery", domain.ErrAlreadyFinalized, http.StatusBadRequest},
		{"expired", domain.ErrBookingExpired, http.StatusBadRequest},
		{"amount mismatch", domain.ErrAmountMismatch, http.StatusBadRequest},
		{"pending", domain.ErrPaymentNotSuccessful, http.StatusBadRequest},
		{"bad reference", fmt.Errorf("%w: %q", domain.ErrInvalidReference, "ORDER-1"), http.StatusBadRequest},
		{"bad signature", domain.ErrInvalidSignature, http.StatusForbidden},
		{"unknown booking", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter()
			r.payments.On("ConfirmPayment", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := r.do(http.MethodPost, "/payments/midtrans/confirm", settlementBody, false)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.err.Error(), decodeEnvelope(t, w)["message"])
		})
	}
}

func TestPaymentHandler_checkout(t *testing.T) {
	r := newTestRouter()
	r.payments.On("CreateProviderCheckout", mock.Anything, int64(7), int64(5), "gopay").
		Return(&payment.CheckoutResult{
			CheckoutURL:  "https://app.sandbox.midtrans.com/snap/v4/redirection/tok",
			SessionToken: "tok",
			OrderID:      "BOOKING-5-1767225600",
		}, nil)

	w := r.do(http.MethodPost, "/payments/midtrans/token/5", `{"paymentMethod":"gopay"}`, true)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "tok", data["sessionToken"])
	assert.Equal(t, "BOOKING-5-1767225600", data["orderId"])
}

func TestPaymentHandler_checkout_ProviderDown(t *testing.T) {
	r := newTestRouter()
	r.payments.On("CreateProviderCheckout", mock.Anything, int64(7), int64(5), "gopay").
		Return(nil, fmt.Errorf("%w: snap timeout", domain.ErrPaymentProvider))

	w := r.do(http.MethodPost, "/payments/midtrans/token/5", `{"paymentMethod":"gopay"}`, true)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPaymentHandler_checkout_RequiresSession(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodPost, "/payments/midtrans/token/5", `{"paymentMethod":"gopay"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	r.payments.AssertNotCalled(t, "CreateProviderCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_fakePayment(t *testing.T) {
	r := newTestRouter()
	input := payment.FakePaymentInput{
		PaymentMethod:  "credit_card",
		CardNumber:     "4111111111111111",
		CardHolderName: "Budi Santoso",
		CVV:            "123",
		ExpiryDate:     "12/30",
	}
	r.payments.On("ConfirmFakePayment", mock.Anything, int64(7), int64(5), input).
		Return(&domain.Booking{ID: 5, BookingCode: "0A1B2C3D4E", Status: domain.BookingStatusPaid}, nil)
	r.payments.On("ConfirmFakePayment", mock.Anything, int64(7), int64(6), mock.Anything).
		Return(nil, domain.ErrAlreadyFinalized)

	body := `{"paymentMethod":"credit_card","cardNumber":"4111111111111111","cardHolderName":"Budi Santoso","cvv":"123","expiryDate":"12/30"}`
	w := r.do(http.MethodPost, "/payments/payment/5", body, true)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Payment method validated successfully", resp["message"])
	assert.Equal(t, "credit_card", resp["data"].(map[string]any)["payment_method"])

	w = r.do(http.MethodPost, "/payments/payment/6", body, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrAlreadyFinalized.Error(), decodeEnvelope(t, w)["message"])
}

func TestPaymentHandler_fakePayment_InvalidBookingID(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodPost, "/payments/payment/0", `{"paymentMethod":"gopay"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	r.payments.AssertNotCalled(t, "ConfirmFakePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
