package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	ListFavorites(ctx context.Context, limit int) ([]domain.Flight, error)
	SearchTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
}

// TicketFilter selects tickets of one seat class on the outbound route, and on the
// reversed route when Return is set. From and To are airport codes.
type TicketFilter struct {
	From      string
	To        string
	Departure time.Time
	Return    *time.Time
	SeatClass string
	Limit     int
	Offset    int
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const ticketSelect = `SELECT t.id, t.price, t.after_discount_price, t.promo_id,
	sc.id, sc.type,
	f.id, f.flight_number, f.departure_time, f.arrival_time, f.count,
	da.id, da.code, da.name, da.city,
	aa.id, aa.code, aa.name, aa.city
FROM tickets t
JOIN seat_classes sc ON sc.id = t.seat_class_id
JOIN flights f ON f.id = t.flight_id
JOIN airports da ON da.id = f.departure_airport_id
JOIN airports aa ON aa.id = f.arrival_airport_id`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	f := &t.Flight
	if err := row.Scan(&t.ID, &t.Price, &t.AfterDiscountPrice, &t.PromoID,
		&t.SeatClass.ID, &t.SeatClass.Type,
		&f.ID, &f.FlightNumber, &f.DepartureTime, &f.ArrivalTime, &f.Count,
		&f.DepartureAirport.ID, &f.DepartureAirport.Code, &f.DepartureAirport.Name, &f.DepartureAirport.City,
		&f.ArrivalAirport.ID, &f.ArrivalAirport.Code, &f.ArrivalAirport.Name, &f.ArrivalAirport.City,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func getTicket(ctx context.Context, q querier, id int64) (*domain.Ticket, error) {
	t, err := scanTicket(q.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// loadTickets fetches every ticket in ids in one round trip, keyed by ticket id.
func loadTickets(ctx context.Context, q querier, ids []int64) (map[int64]*domain.Ticket, error) {
	tickets := make(map[int64]*domain.Ticket, len(ids))
	if len(ids) == 0 {
		return tickets, nil
	}

	rows, err := q.Query(ctx, ticketSelect+` WHERE t.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets[t.ID] = t
	}
	return tickets, rows.Err()
}

func (r *PGFlightRepository) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	return getTicket(ctx, r.db, id)
}

func (r *PGFlightRepository) ListFavorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.flight_number, f.departure_time, f.arrival_time, f.count,
		da.id, da.code, da.name, da.city,
		aa.id, aa.code, aa.name, aa.city,
		(SELECT MIN(CASE WHEN t.promo_id IS NOT NULL AND t.after_discount_price IS NOT NULL THEN t.after_discount_price ELSE t.price END)
			FROM tickets t WHERE t.flight_id = f.id)
	FROM flights f
	JOIN airports da ON da.id = f.departure_airport_id
	JOIN airports aa ON aa.id = f.arrival_airport_id
	WHERE f.departure_time > now()
	ORDER BY f.count DESC, f.departure_time
	LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.DepartureTime, &f.ArrivalTime, &f.Count,
			&f.DepartureAirport.ID, &f.DepartureAirport.Code, &f.DepartureAirport.Name, &f.DepartureAirport.City,
			&f.ArrivalAirport.ID, &f.ArrivalAirport.Code, &f.ArrivalAirport.Name, &f.ArrivalAirport.City,
			&f.LowestFare,
		); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

const ticketSearchWhere = ` WHERE lower(sc.type) = lower($1)
	AND ((da.code = $2 AND aa.code = $3 AND f.departure_time >= $4)
		OR ($5::timestamptz IS NOT NULL AND da.code = $3 AND aa.code = $2 AND f.departure_time >= $5))`

// ticketSearchArgs returns the positional arguments shared by the search and count statements.
func ticketSearchArgs(filter TicketFilter) []any {
	return []any{filter.SeatClass, filter.From, filter.To, filter.Departure, filter.Return}
}

func (r *PGFlightRepository) SearchTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	return searchTickets(ctx, r.db, filter)
}

func searchTickets(ctx context.Context, q querier, filter TicketFilter) ([]domain.Ticket, int, error) {
	args := ticketSearchArgs(filter)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM tickets t
JOIN seat_classes sc ON sc.id = t.seat_class_id
JOIN flights f ON f.id = t.flight_id
JOIN airports da ON da.id = f.departure_airport_id
JOIN airports aa ON aa.id = f.arrival_airport_id`+ticketSearchWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Ticket{}, 0, nil
	}

	rows, err := q.Query(ctx, ticketSelect+ticketSearchWhere+`
	ORDER BY f.departure_time, t.id
	LIMIT $6 OFFSET $7`, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, total, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
