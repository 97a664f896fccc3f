package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/cache"
	"github.com/Domenick1991/skyticket/internal/email"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/worker"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			logrus.WithError(err).Error("consumer stopped")
		}
	}()

	if cfg.Worker.ExpirationSweepMinutes > 0 {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			logrus.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		redisCache := cache.NewRedisCache(
			cfg.Redis,
			time.Duration(cfg.Booking.TicketsCacheTTL)*time.Second,
			time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		)
		defer redisCache.Close()

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PublishAttempts)
		defer producer.Close()

		bookingService := booking.NewBookingService(
			repository.NewBookingRepository(pool),
			flights.NewFlightService(repository.NewFlightRepository(pool), redisCache),
			producer,
			cfg.Kafka.BookingEventsTopic,
			cfg.Booking.PaymentWindow(),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)

		sweeper := worker.NewExpirationSweeper(bookingService, time.Duration(cfg.Worker.ExpirationSweepMinutes)*time.Minute)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Start(ctx)
		}()
	}

	<-ctx.Done()
	logrus.Info("shutting down worker")
	wg.Wait()
}
