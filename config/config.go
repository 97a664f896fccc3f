package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Payment  PaymentConfig  `yaml:"payment"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string `yaml:"address" env:"HTTP_ADDRESS"`
	SwaggerDir     string `yaml:"swagger_dir" env:"HTTP_SWAGGER_DIR"`
	GinMode        string `yaml:"gin_mode" env:"GIN_MODE"`
	RequestTimeout int    `yaml:"request_timeout_seconds" env:"HTTP_REQUEST_TIMEOUT_SECONDS"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DATABASE_HOST"`
	Port     int    `yaml:"port" env:"DATABASE_PORT"`
	User     string `yaml:"user" env:"DATABASE_USER"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD"`
	Name     string `yaml:"name" env:"DATABASE_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DATABASE_SSL_MODE"`
	Migrate  bool   `yaml:"migrate" env:"DATABASE_MIGRATE"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	BookingEventsTopic string   `yaml:"booking_events_topic" env:"KAFKA_BOOKING_EVENTS_TOPIC"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
	PublishAttempts    uint     `yaml:"publish_attempts" env:"KAFKA_PUBLISH_ATTEMPTS"`
}

type BookingConfig struct {
	PaymentWindowMinutes int   `yaml:"payment_window_minutes" env:"BOOKING_PAYMENT_WINDOW_MINUTES"`
	DonationAmount       int64 `yaml:"donation_amount" env:"BOOKING_DONATION_AMOUNT"`
	InfantsOccupySeat    bool  `yaml:"infants_occupy_seat" env:"BOOKING_INFANTS_OCCUPY_SEAT"`
	CodeAttempts         uint  `yaml:"code_attempts" env:"BOOKING_CODE_ATTEMPTS"`
	TicketsCacheTTL      int   `yaml:"tickets_cache_ttl_seconds" env:"BOOKING_TICKETS_CACHE_TTL_SECONDS"`
	FlightsCacheTTL      int   `yaml:"flights_cache_ttl_seconds" env:"BOOKING_FLIGHTS_CACHE_TTL_SECONDS"`
}

func (b BookingConfig) PaymentWindow() time.Duration {
	return time.Duration(b.PaymentWindowMinutes) * time.Minute
}

type PaymentConfig struct {
	ServerKey       string `yaml:"server_key" env:"MIDTRANS_SERVER_KEY"`
	Production      bool   `yaml:"production" env:"MIDTRANS_PRODUCTION"`
	ClientBaseURL   string `yaml:"client_base_url" env:"CLIENT_BASE_URL"`
	VerifySignature bool   `yaml:"verify_signature" env:"PAYMENT_VERIFY_SIGNATURE"`
	LockTTLSeconds  int    `yaml:"lock_ttl_seconds" env:"PAYMENT_LOCK_TTL_SECONDS"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes" env:"WORKER_EXPIRATION_SWEEP_MINUTES"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.GinMode == "" {
		c.HTTP.GinMode = "release"
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 30
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Kafka.PublishAttempts == 0 {
		c.Kafka.PublishAttempts = 3
	}
	if c.Booking.PaymentWindowMinutes <= 0 {
		c.Booking.PaymentWindowMinutes = 15
	}
	if c.Booking.DonationAmount <= 0 {
		c.Booking.DonationAmount = 1000
	}
	if c.Booking.CodeAttempts == 0 {
		c.Booking.CodeAttempts = 5
	}
	if c.Booking.TicketsCacheTTL <= 0 {
		c.Booking.TicketsCacheTTL = 60
	}
	if c.Booking.FlightsCacheTTL <= 0 {
		c.Booking.FlightsCacheTTL = 300
	}
	if c.Payment.LockTTLSeconds <= 0 {
		c.Payment.LockTTLSeconds = 30
	}
}
