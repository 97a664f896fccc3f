package flights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/repository"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50

	searchDateLayout = "2006-01-02"
	maxSearchPage    = math.MaxInt32 / MaxSearchLimit
)

// SearchQuery is a ticket search as received from the client. Dates use the YYYY-MM-DD layout.
type SearchQuery struct {
	From       string
	To         string
	Departure  string
	Return     string
	Passengers int
	SeatClass  string
	Page       int
	Limit      int
}

// SearchResult groups matching tickets by direction. Return is only filled for round trips.
type SearchResult struct {
	Departure  []domain.Ticket `json:"departure"`
	Return     []domain.Ticket `json:"return"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func (s *FlightService) SearchTickets(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	filter, page, err := ticketFilter(query)
	if err != nil {
		return nil, err
	}

	tickets, total, err := s.repo.SearchTickets(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Departure:  make([]domain.Ticket, 0, len(tickets)),
		Return:     make([]domain.Ticket, 0),
		Page:       page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}
	for _, t := range tickets {
		if filter.Return != nil && t.Flight.DepartureAirport.Code == filter.To {
			result.Return = append(result.Return, t)
			continue
		}
		result.Departure = append(result.Departure, t)
	}
	return result, nil
}

// ticketFilter validates query and turns it into a repository filter plus the effective page.
func ticketFilter(query SearchQuery) (repository.TicketFilter, int, error) {
	filter := repository.TicketFilter{
		From:      strings.ToUpper(strings.TrimSpace(query.From)),
		To:        strings.ToUpper(strings.TrimSpace(query.To)),
		SeatClass: strings.TrimSpace(query.SeatClass),
		Limit:     query.Limit,
	}
	departure := strings.TrimSpace(query.Departure)
	if filter.From == "" || filter.To == "" || departure == "" || query.Passengers <= 0 || filter.SeatClass == "" {
		return filter, 0, fmt.Errorf("%w: from, to, departure, passengers and seat_class are required", domain.ErrInvalidRequest)
	}
	if filter.From == filter.To {
		return filter, 0, fmt.Errorf("%w: origin and destination must differ", domain.ErrInvalidRequest)
	}

	var err error
	if filter.Departure, err = time.Parse(searchDateLayout, departure); err != nil {
		return filter, 0, fmt.Errorf("%w: departure must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}
	if raw := strings.TrimSpace(query.Return); raw != "" {
		back, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			return filter, 0, fmt.Errorf("%w: return must be YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		if back.Before(filter.Departure) {
			return filter, 0, fmt.Errorf("%w: return date is before departure", domain.ErrInvalidRequest)
		}
		filter.Return = &back
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultSearchLimit
	case filter.Limit > MaxSearchLimit:
		filter.Limit = MaxSearchLimit
	}
	page := min(max(query.Page, 1), maxSearchPage)
	filter.Offset = (page - 1) * filter.Limit
	return filter, page, nil
}
