package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyticket/api"
	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/bootstrap"
	"github.com/Domenick1991/skyticket/internal/cache"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/metrics"
	"github.com/Domenick1991/skyticket/internal/provider"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/service/notifications"
	"github.com/Domenick1991/skyticket/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	gin.SetMode(cfg.HTTP.GinMode)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			logrus.Fatalf("migrate: %v", err)
		}
	}

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.TicketsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
	)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("redis unavailable, caches and payment locks degraded")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PublishAttempts)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logrus.WithError(err).Warn("kafka unavailable, events will be dropped")
	}

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightService,
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Booking.PaymentWindow(),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithDonationAmount(cfg.Booking.DonationAmount),
		booking.WithInfantsOccupySeat(cfg.Booking.InfantsOccupySeat),
		booking.WithCodeAttempts(cfg.Booking.CodeAttempts),
	)

	paymentOpts := []payment.PaymentServiceOption{
		payment.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		payment.WithClientBaseURL(cfg.Payment.ClientBaseURL),
		payment.WithLockTTL(time.Duration(cfg.Payment.LockTTLSeconds) * time.Second),
	}
	if cfg.Payment.VerifySignature && cfg.Payment.ServerKey != "" {
		paymentOpts = append(paymentOpts, payment.WithSignatureVerification(cfg.Payment.ServerKey))
	}
	paymentService := payment.NewPaymentService(
		paymentRepo,
		bookingRepo,
		userRepo,
		provider.NewMidtransCheckout(cfg.Payment.ServerKey, cfg.Payment.Production),
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		paymentOpts...,
	)
	notificationService := notifications.NewNotificationService(notificationRepo)

	router := api.NewRouter(api.Handlers{
		Bookings:      api.NewBookingHandler(bookingService),
		Payments:      api.NewPaymentHandler(paymentService),
		Flights:       api.NewFlightHandler(flightService),
		Notifications: api.NewNotificationHandler(notificationService),
	}, redisCache)

	if err := bootstrap.Run(ctx, cfg, router, pool); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
