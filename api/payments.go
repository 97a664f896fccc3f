package api

import (
	"net/http"

	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterWebhook mounts the provider callback, which carries no user session.
func (h *PaymentHandler) RegisterWebhook(router *gin.RouterGroup) {
	router.POST("/midtrans/confirm", h.confirm)
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/midtrans/token/:bookingId", h.checkout)
	router.POST("/payment/:bookingId", h.fakePayment)
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func (h *PaymentHandler) checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.CreateProviderCheckout(c.Request.Context(), userID, bookingID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Token retrieved successfully", result)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var notification payment.ProviderNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid notification body")
		return
	}

	logger.WithContext(c.Request.Context()).
		WithField("order_id", notification.OrderID).
		WithField("transaction_status", notification.TransactionStatus).
		Info("payment notification received")

	b, err := h.service.ConfirmPayment(c.Request.Context(), notification)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Payment confirmed and booking status updated successfully", gin.H{
		"booking_id":   b.ID,
		"booking_code": b.BookingCode,
		"status":       b.Status,
	})
}

func (h *PaymentHandler) fakePayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	var input payment.FakePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.ConfirmFakePayment(c.Request.Context(), userID, bookingID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Payment method validated successfully", gin.H{
		"booking_id":     b.ID,
		"booking_code":   b.BookingCode,
		"status":         b.Status,
		"payment_method": input.PaymentMethod,
	})
}
