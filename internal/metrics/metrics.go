package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Number of bookings created",
		},
	)

	BookingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_expired_total",
			Help: "Number of unpaid bookings canceled after the payment deadline",
		},
	)

	PaymentsConfirmed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Number of bookings moved to PAID, by payment method",
		},
		[]string{"method"},
	)

	PaymentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_failures_total",
			Help: "Number of rejected payment attempts, by reason",
		},
		[]string{"reason"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(BookingsCreated, BookingsExpired, PaymentsConfirmed, PaymentFailures, HTTPRequestDuration)
	})
}
