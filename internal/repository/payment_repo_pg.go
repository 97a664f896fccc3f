package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Finalize(ctx context.Context, params FinalizeParams) (*domain.Booking, error)
}

// FinalizeParams describes one attempt to move a booking from UNPAID to PAID.
type FinalizeParams struct {
	BookingID int64
	// OwnerID restricts finalization to the booking owner. Nil for provider callbacks.
	OwnerID *int64
	Method  string
	// Amount is compared with the booking total when set.
	Amount       *int64
	Now          time.Time
	Notification domain.Notification
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

// Finalize locks the booking row and applies the payment exactly once. When the deadline has
// already passed the booking is canceled, the cancellation is committed and ErrBookingExpired
// is returned together with the canceled booking.
func (r *PGPaymentRepository) Finalize(ctx context.Context, params FinalizeParams) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=$1 FOR UPDATE`, params.BookingID))
	if err != nil {
		return nil, notFound(err)
	}
	if params.OwnerID != nil && *params.OwnerID != b.UserID {
		return nil, domain.ErrNotFound
	}
	if b.Status.IsFinal() {
		return nil, domain.ErrAlreadyFinalized
	}

	if b.Expired(params.Now) {
		if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3`, domain.BookingStatusCanceled, params.Now, b.ID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatusCanceled
		return b, domain.ErrBookingExpired
	}

	if params.Amount != nil && *params.Amount != b.TotalPrice {
		return nil, domain.ErrAmountMismatch
	}

	payment := domain.Payment{BookingID: b.ID, Name: params.Method, PaidAt: params.Now}
	if err := tx.QueryRow(ctx, `INSERT INTO payments (booking_id, name, paid_at) VALUES ($1, $2, $3) RETURNING id`,
		payment.BookingID, payment.Name, payment.PaidAt).Scan(&payment.ID); err != nil {
		if isUniqueViolation(err, "payments_booking_id_key") {
			return nil, domain.ErrAlreadyFinalized
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3`, domain.BookingStatusPaid, params.Now, b.ID); err != nil {
		return nil, err
	}

	notification := params.Notification
	notification.UserID = b.UserID
	if err := insertNotification(ctx, tx, &notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatusPaid
	b.UpdatedAt = params.Now
	b.Payment = &payment
	return b, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
