package notifications

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = math.MaxInt32 / maxPageSize
)

type NotificationUseCase interface {
	List(ctx context.Context, userID int64, query ListQuery) (*Page, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type ListQuery struct {
	Type  string
	Page  int
	Limit int
}

type Page struct {
	Items      []domain.Notification `json:"notifications"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, userID int64, query ListQuery) (*Page, error) {
	filter := repository.NotificationFilter{Limit: query.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	page := min(max(query.Page, 1), maxPage)
	filter.Offset = (page - 1) * filter.Limit

	if raw := strings.ToLower(strings.TrimSpace(query.Type)); raw != "" {
		t := domain.NotificationType(raw)
		switch t {
		case domain.NotificationTransaction, domain.NotificationPromo, domain.NotificationGeneral:
			filter.Type = &t
		default:
			return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrInvalidRequest, query.Type)
		}
	}

	items, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:      items,
		Page:       page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

var _ NotificationUseCase = (*NotificationService)(nil)
