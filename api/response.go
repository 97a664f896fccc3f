package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{Status: true, Message: message, Data: data})
}

func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).WithError(err).Error("request failed")
		message = "internal server error"
	}
	c.AbortWithStatusJSON(code, envelope{Status: false, Message: message, Data: nil})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, envelope{Status: false, Message: message, Data: nil})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPaymentProvider):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrPassengerCountMismatch),
		errors.Is(err, domain.ErrInvalidPassengerData),
		errors.Is(err, domain.ErrInvalidRoundTrip),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrPaymentNotSuccessful),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidPaymentDetails):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
