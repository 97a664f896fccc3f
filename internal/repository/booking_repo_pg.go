package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Create stores the booking, its passengers and the owner notification in one transaction
	// and bumps the popularity counter of every flight involved.
	Create(ctx context.Context, booking *domain.Booking, notification *domain.Notification) error
	// ExpireUnpaid cancels UNPAID bookings whose deadline is before now. A nil userID sweeps all users.
	ExpireUnpaid(ctx context.Context, userID *int64, now time.Time) ([]domain.Booking, error)
	List(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentURL(ctx context.Context, id int64, url string) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `b.id, b.user_id, b.booking_code, b.status, b.is_round_trip, b.departure_ticket_id, b.return_ticket_id,
	b.adults, b.children, b.infants, b.seat_count, b.total_price, b.booking_tax, b.donation, b.url_payment,
	b.expired_paid, b.created_at, b.updated_at`

const bookingCodeConstraint = "bookings_booking_code_key"

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.BookingCode, &b.Status, &b.IsRoundTrip, &b.DepartureTicketID, &b.ReturnTicketID,
		&b.Adults, &b.Children, &b.Infants, &b.SeatCount, &b.TotalPrice, &b.BookingTax, &b.Donation, &b.URLPayment,
		&b.ExpiredPaid, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, notification *domain.Notification) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := createBooking(ctx, tx, booking, notification); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// createBooking runs the statements of Create inside q. Ticket rows are key-share locked so
// they cannot disappear before commit, while flight rows are only locked by the counter
// updates, one at a time in ascending id order.
func createBooking(ctx context.Context, q querier, booking *domain.Booking, notification *domain.Notification) error {
	ticketIDs := []int64{booking.DepartureTicketID}
	if booking.ReturnTicketID != nil {
		ticketIDs = append(ticketIDs, *booking.ReturnTicketID)
	}

	flightIDs := make([]int64, 0, len(ticketIDs))
	for _, ticketID := range ticketIDs {
		var flightID int64
		if err := q.QueryRow(ctx, `SELECT t.flight_id FROM tickets t WHERE t.id=$1 FOR KEY SHARE`, ticketID).Scan(&flightID); err != nil {
			return fmt.Errorf("ticket %d: %w", ticketID, notFound(err))
		}
		flightIDs = append(flightIDs, flightID)
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = booking.CreatedAt
	booking.Status = domain.BookingStatusUnpaid
	err := q.QueryRow(ctx, `INSERT INTO bookings (user_id, booking_code, status, is_round_trip, departure_ticket_id, return_ticket_id,
		adults, children, infants, seat_count, total_price, booking_tax, donation, expired_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id`,
		booking.UserID, booking.BookingCode, booking.Status, booking.IsRoundTrip, booking.DepartureTicketID, booking.ReturnTicketID,
		booking.Adults, booking.Children, booking.Infants, booking.SeatCount, booking.TotalPrice, booking.BookingTax, booking.Donation,
		booking.ExpiredPaid, booking.CreatedAt,
	).Scan(&booking.ID)
	if err != nil {
		if isUniqueViolation(err, bookingCodeConstraint) {
			return ErrDuplicateBookingCode
		}
		return err
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if err := q.QueryRow(ctx, `INSERT INTO passengers (booking_id, title, full_name, family_name, birth_date, nationality,
			identity_type, identity_number, issuing_country, expired_date, age_group)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			p.BookingID, p.Title, p.FullName, p.FamilyName, p.BirthDate, p.Nationality,
			p.IdentityType, p.IdentityNumber, p.IssuingCountry, p.ExpiredDate, p.AgeGroup,
		).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert passenger %d: %w", i+1, err)
		}
	}

	for _, flightID := range lockOrder(flightIDs) {
		if _, err := q.Exec(ctx, `UPDATE flights SET count = count + 1 WHERE id = $1`, flightID); err != nil {
			return err
		}
	}

	if notification != nil {
		notification.UserID = booking.UserID
		if err := insertNotification(ctx, q, notification); err != nil {
			return err
		}
	}
	return nil
}

// lockOrder returns the distinct ids in ascending order.
func lockOrder(ids []int64) []int64 {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func (r *PGBookingRepository) ExpireUnpaid(ctx context.Context, userID *int64, now time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings AS b SET status=$1, updated_at=$3
		WHERE b.status=$2 AND b.expired_paid < $3 AND ($4::bigint IS NULL OR b.user_id = $4)
		RETURNING `+bookingColumns, domain.BookingStatusCanceled, domain.BookingStatusUnpaid, now, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) List(ctx context.Context, userID int64, filter domain.BookingFilter) ([]domain.Booking, error) {
	query, args := buildListQuery(userID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.DepartureTicketID)
		if b.ReturnTicketID != nil {
			ids = append(ids, *b.ReturnTicketID)
		}
	}
	tickets, err := loadTickets(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		attachLegs(&bookings[i], tickets)
	}
	return bookings, nil
}

func buildListQuery(userID int64, filter domain.BookingFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookingColumns + ` FROM bookings b
	JOIN tickets t ON t.id = b.departure_ticket_id
	JOIN flights f ON f.id = t.flight_id
	WHERE b.user_id = $1`)
	args := []any{userID}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		fmt.Fprintf(&sb, " AND b.booking_code ILIKE $%d", len(args))
	}
	if filter.Date != nil {
		d := *filter.Date
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		args = append(args, start, start.AddDate(0, 0, 1))
		fmt.Fprintf(&sb, " AND b.created_at >= $%d AND b.created_at < $%d", len(args)-1, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, " AND b.status = $%d", len(args))
	}

	sb.WriteString(" ORDER BY f.departure_time DESC, b.created_at DESC")
	return sb.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func attachLegs(b *domain.Booking, tickets map[int64]*domain.Ticket) {
	b.DepartureTicket = tickets[b.DepartureTicketID]
	if b.ReturnTicketID != nil {
		b.ReturnTicket = tickets[*b.ReturnTicketID]
	}
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}

	ids := []int64{b.DepartureTicketID}
	if b.ReturnTicketID != nil {
		ids = append(ids, *b.ReturnTicketID)
	}
	tickets, err := loadTickets(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	attachLegs(b, tickets)

	if b.Passengers, err = r.passengers(ctx, b.ID); err != nil {
		return nil, err
	}

	var p domain.Payment
	err = r.db.QueryRow(ctx, `SELECT id, booking_id, name, paid_at FROM payments WHERE booking_id=$1`, b.ID).
		Scan(&p.ID, &p.BookingID, &p.Name, &p.PaidAt)
	switch {
	case err == nil:
		b.Payment = &p
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	return b, nil
}

func (r *PGBookingRepository) passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, title, full_name, family_name, birth_date, nationality,
		identity_type, identity_number, issuing_country, expired_date, age_group
		FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Title, &p.FullName, &p.FamilyName, &p.BirthDate, &p.Nationality,
			&p.IdentityType, &p.IdentityNumber, &p.IssuingCountry, &p.ExpiredDate, &p.AgeGroup); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) SetPaymentURL(ctx context.Context, id int64, url string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET url_payment=$1, updated_at=now() WHERE id=$2 AND status=$3`, url, id, domain.BookingStatusUnpaid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyFinalized
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
