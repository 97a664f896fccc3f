package flights

import (
	"context"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/logger"
	"github.com/Domenick1991/skyticket/internal/repository"
)

const (
	DefaultFavoritesLimit = 10
	MaxFavoritesLimit     = 50
)

type FlightUseCase interface {
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	Favorites(ctx context.Context, limit int) ([]domain.Flight, error)
	SearchTickets(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

type FlightCache interface {
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	SetTicket(ctx context.Context, ticket *domain.Ticket) error
	GetFavorites(ctx context.Context, limit int) ([]domain.Flight, error)
	SetFavorites(ctx context.Context, limit int, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

// GetTicket reads through the ticket cache. Cache failures fall back to the database.
func (s *FlightService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTicket(ctx, id); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("ticket cache read failed")
		}
	}

	ticket, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTicket(ctx, ticket)
	}
	return ticket, nil
}

func (s *FlightService) Favorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	limit = clampLimit(limit)

	if s.cache != nil {
		if cached, err := s.cache.GetFavorites(ctx, limit); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.ListFavorites(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFavorites(ctx, limit, flights)
	}
	return flights, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFavoritesLimit
	case limit > MaxFavoritesLimit:
		return MaxFavoritesLimit
	default:
		return limit
	}
}

var _ FlightUseCase = (*FlightService)(nil)
