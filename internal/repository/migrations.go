package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Migrate creates the schema if it does not exist yet. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	logrus.Info("running database migrations")

	for i, migration := range migrations {
		logrus.WithField("step", i+1).Debug("running migration")
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	logrus.WithField("steps", len(migrations)).Info("database migrations completed")
	return nil
}

var migrations = []string{
	createUsersTable,
	createAirportsTable,
	createFlightsTable,
	createSeatClassesTable,
	createPromosTable,
	createTicketsTable,
	createBookingsTable,
	createPassengersTable,
	createPaymentsTable,
	createNotificationsTable,
	createBookingsIndexes,
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    phone_number VARCHAR(32) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createAirportsTable = `
CREATE TABLE IF NOT EXISTS airports (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(8) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL,
    city VARCHAR(255) NOT NULL
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id BIGSERIAL PRIMARY KEY,
    flight_number VARCHAR(32) NOT NULL,
    departure_airport_id BIGINT NOT NULL REFERENCES airports(id),
    arrival_airport_id BIGINT NOT NULL REFERENCES airports(id),
    departure_time TIMESTAMPTZ NOT NULL,
    arrival_time TIMESTAMPTZ NOT NULL,
    count BIGINT NOT NULL DEFAULT 0
);`

const createSeatClassesTable = `
CREATE TABLE IF NOT EXISTS seat_classes (
    id BIGSERIAL PRIMARY KEY,
    type VARCHAR(32) UNIQUE NOT NULL
);`

const createPromosTable = `
CREATE TABLE IF NOT EXISTS promos (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(64) UNIQUE NOT NULL,
    discount INTEGER NOT NULL CHECK (discount BETWEEN 0 AND 100),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at TIMESTAMPTZ
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
    seat_class_id BIGINT NOT NULL REFERENCES seat_classes(id),
    price BIGINT NOT NULL CHECK (price >= 0),
    after_discount_price BIGINT,
    promo_id BIGINT REFERENCES promos(id) ON DELETE SET NULL
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    booking_code VARCHAR(16) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'UNPAID',
    is_round_trip BOOLEAN NOT NULL DEFAULT FALSE,
    departure_ticket_id BIGINT NOT NULL REFERENCES tickets(id),
    return_ticket_id BIGINT REFERENCES tickets(id),
    adults INTEGER NOT NULL,
    children INTEGER NOT NULL DEFAULT 0,
    infants INTEGER NOT NULL DEFAULT 0,
    seat_count INTEGER NOT NULL,
    total_price BIGINT NOT NULL,
    booking_tax BIGINT NOT NULL,
    donation BIGINT NOT NULL DEFAULT 0,
    url_payment TEXT,
    expired_paid TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),

    CONSTRAINT bookings_booking_code_key UNIQUE (booking_code),
    CHECK (status IN ('UNPAID', 'PAID', 'CANCELED'))
);`

const createPassengersTable = `
CREATE TABLE IF NOT EXISTS passengers (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    title VARCHAR(16) NOT NULL,
    full_name VARCHAR(255) NOT NULL,
    family_name VARCHAR(255) NOT NULL DEFAULT '',
    birth_date DATE NOT NULL,
    nationality VARCHAR(64) NOT NULL,
    identity_type VARCHAR(32) NOT NULL,
    identity_number VARCHAR(64) NOT NULL,
    issuing_country VARCHAR(64) NOT NULL,
    expired_date DATE NOT NULL,
    age_group VARCHAR(16) NOT NULL
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id BIGSERIAL PRIMARY KEY,
    booking_id BIGINT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    name VARCHAR(32) NOT NULL,
    paid_at TIMESTAMPTZ NOT NULL,

    CONSTRAINT payments_booking_id_key UNIQUE (booking_id)
);`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    type VARCHAR(16) NOT NULL DEFAULT 'transaction',
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createBookingsIndexes = `
CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_unpaid_deadline ON bookings(expired_paid) WHERE status = 'UNPAID';
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);`
