package flights

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockFlightRepository) ListFavorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Ticket), args.Int(1), args.Error(2)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockCache) SetTicket(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockCache) GetFavorites(ctx context.Context, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFavorites(ctx context.Context, limit int, flights []domain.Flight) error {
	args := m.Called(ctx, limit, flights)
	return args.Error(0)
}

func TestFlightService_GetTicket_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	ticket := &domain.Ticket{ID: 7, Price: 500000}
	mockCache.On("GetTicket", ctx, int64(7)).Return(ticket, nil).Once()

	result, err := service.GetTicket(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, ticket, result)
	mockRepo.AssertNotCalled(t, "GetTicket", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestFlightService_GetTicket_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	ticket := &domain.Ticket{ID: 7, Price: 500000}
	mockCache.On("GetTicket", ctx, int64(7)).Return(nil, nil).Once()
	mockRepo.On("GetTicket", ctx, int64(7)).Return(ticket, nil).Once()
	mockCache.On("SetTicket", ctx, ticket).Return(nil).Once()

	result, err := service.GetTicket(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, ticket, result)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_GetTicket_CacheErrorFallsBack(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	ticket := &domain.Ticket{ID: 7}
	mockCache.On("GetTicket", ctx, int64(7)).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("GetTicket", ctx, int64(7)).Return(ticket, nil).Once()
	mockCache.On("SetTicket", ctx, ticket).Return(errors.New("redis down")).Once()

	result, err := service.GetTicket(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, ticket, result)
}

func TestFlightService_GetTicket_NotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("GetTicket", ctx, int64(9)).Return(nil, domain.ErrNotFound).Once()

	result, err := service.GetTicket(ctx, 9)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)
}

func TestFlightService_Favorites(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := []domain.Flight{{ID: 1, Count: 40}, {ID: 2, Count: 12}}
	mockCache.On("GetFavorites", ctx, DefaultFavoritesLimit).Return(nil, nil).Once()
	mockRepo.On("ListFavorites", ctx, DefaultFavoritesLimit).Return(flights, nil).Once()
	mockCache.On("SetFavorites", ctx, DefaultFavoritesLimit, flights).Return(nil).Once()

	result, err := service.Favorites(ctx, 0)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Favorites_CacheHitAndClamp(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := []domain.Flight{{ID: 1}}
	mockCache.On("GetFavorites", ctx, MaxFavoritesLimit).Return(flights, nil).Once()

	result, err := service.Favorites(ctx, 500)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "ListFavorites", mock.Anything, mock.Anything)
}

func TestFlightService_Favorites_RepoError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("ListFavorites", ctx, 5).Return(nil, errors.New("database error")).Once()

	result, err := service.Favorites(ctx, 5)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func searchTicket(id int64, from, to string) domain.Ticket {
	return domain.Ticket{ID: id, Flight: domain.Flight{
		DepartureAirport: domain.Airport{Code: from},
		ArrivalAirport:   domain.Airport{Code: to},
	}}
}

func TestFlightService_SearchTickets_RoundTripSplitsByDirection(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	departure := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	back := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	filter := repository.TicketFilter{
		From: "CGK", To: "DPS", Departure: departure, Return: &back,
		SeatClass: "ECONOMY", Limit: 2, Offset: 2,
	}
	tickets := []domain.Ticket{searchTicket(1, "CGK", "DPS"), searchTicket(2, "DPS", "CGK")}
	mockRepo.On("SearchTickets", ctx, filter).Return(tickets, 5, nil).Once()

	result, err := service.SearchTickets(ctx, SearchQuery{
		From: " cgk", To: "dps ", Departure: "2026-05-01", Return: "2026-05-08",
		Passengers: 2, SeatClass: "ECONOMY", Page: 2, Limit: 2,
	})

	require.NoError(t, err)
	require.Len(t, result.Departure, 1)
	require.Len(t, result.Return, 1)
	assert.Equal(t, int64(1), result.Departure[0].ID)
	assert.Equal(t, int64(2), result.Return[0].ID)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_SearchTickets_OneWayDefaults(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	mockRepo.On("SearchTickets", ctx, mock.MatchedBy(func(f repository.TicketFilter) bool {
		return f.Return == nil && f.Limit == DefaultSearchLimit && f.Offset == 0
	})).Return([]domain.Ticket{searchTicket(1, "CGK", "DPS")}, 1, nil).Once()

	result, err := service.SearchTickets(ctx, SearchQuery{
		From: "CGK", To: "DPS", Departure: "2026-05-01", Passengers: 1, SeatClass: "ECONOMY",
	})

	require.NoError(t, err)
	assert.Len(t, result.Departure, 1)
	assert.NotNil(t, result.Return)
	assert.Empty(t, result.Return)
	assert.Equal(t, 1, result.Page)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_SearchTickets_HugePageKeepsOffsetPositive(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	mockRepo.On("SearchTickets", ctx, mock.MatchedBy(func(f repository.TicketFilter) bool {
		return f.Limit == MaxSearchLimit && f.Offset > 0
	})).Return([]domain.Ticket{}, 0, nil).Once()

	result, err := service.SearchTickets(ctx, SearchQuery{
		From: "CGK", To: "DPS", Departure: "2026-05-01", Passengers: 1, SeatClass: "ECONOMY",
		Page: math.MaxInt, Limit: 1000,
	})

	require.NoError(t, err)
	assert.Equal(t, maxSearchPage, result.Page)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_SearchTickets_Invalid(t *testing.T) {
	valid := SearchQuery{From: "CGK", To: "DPS", Departure: "2026-05-01", Passengers: 1, SeatClass: "ECONOMY"}
	tests := []struct {
		name   string
		modify func(q *SearchQuery)
	}{
		{"missing origin", func(q *SearchQuery) { q.From = "" }},
		{"missing destination", func(q *SearchQuery) { q.To = "  " }},
		{"missing departure", func(q *SearchQuery) { q.Departure = "" }},
		{"no passengers", func(q *SearchQuery) { q.Passengers = 0 }},
		{"missing seat class", func(q *SearchQuery) { q.SeatClass = "" }},
		{"same airports", func(q *SearchQuery) { q.To = "cgk" }},
		{"bad departure date", func(q *SearchQuery) { q.Departure = "01/05/2026" }},
		{"bad return date", func(q *SearchQuery) { q.Return = "next week" }},
		{"return before departure", func(q *SearchQuery) { q.Return = "2026-04-30" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockFlightRepository{}
			service := NewFlightService(mockRepo, nil)
			query := valid
			tt.modify(&query)

			result, err := service.SearchTickets(context.Background(), query)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
			mockRepo.AssertNotCalled(t, "SearchTickets", mock.Anything, mock.Anything)
		})
	}
}

func TestFlightService_SearchTickets_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	mockRepo.On("SearchTickets", ctx, mock.Anything).Return(nil, 0, errors.New("conn refused")).Once()

	_, err := service.SearchTickets(ctx, SearchQuery{
		From: "CGK", To: "DPS", Departure: "2026-05-01", Passengers: 1, SeatClass: "ECONOMY",
	})

	assert.EqualError(t, err, "conn refused")
}
