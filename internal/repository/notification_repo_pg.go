package repository

import (
	"context"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationFilter struct {
	Type   *domain.NotificationType
	Limit  int
	Offset int
}

type NotificationRepository interface {
	List(ctx context.Context, userID int64, filter NotificationFilter) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

func insertNotification(ctx context.Context, q querier, n *domain.Notification) error {
	if n.Type == "" {
		n.Type = domain.NotificationTransaction
	}
	return q.QueryRow(ctx, `INSERT INTO notifications (user_id, title, message, type) VALUES ($1, $2, $3, $4) RETURNING id, is_read, created_at`,
		n.UserID, n.Title, n.Message, n.Type).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

func (r *PGNotificationRepository) List(ctx context.Context, userID int64, filter NotificationFilter) ([]domain.Notification, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id=$1 AND ($2::text IS NULL OR type=$2)`,
		userID, filter.Type).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, user_id, title, message, type, is_read, created_at FROM notifications
		WHERE user_id=$1 AND ($2::text IS NULL OR type=$2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`, userID, filter.Type, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
