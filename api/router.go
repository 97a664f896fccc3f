package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Bookings      *BookingHandler
	Payments      *PaymentHandler
	Flights       *FlightHandler
	Notifications *NotificationHandler
}

// NewRouter mounts every public and session-protected route on a fresh engine.
func NewRouter(h Handlers, sessions SessionStore) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(), Recovery())
	router.NoRoute(func(c *gin.Context) {
		respondMessage(c, http.StatusNotFound, "route not found")
	})

	h.Flights.Register(router.Group("/flights"))
	h.Payments.RegisterWebhook(router.Group("/payments"))

	private := router.Group("/", Auth(sessions))
	h.Bookings.Register(private.Group("/bookings"))
	h.Payments.Register(private.Group("/payments"))
	h.Notifications.Register(private.Group("/notifications"))

	return router
}
