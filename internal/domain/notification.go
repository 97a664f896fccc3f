package domain

import "time"

type NotificationType string

const (
	NotificationTransaction NotificationType = "transaction"
	NotificationPromo       NotificationType = "promo"
	NotificationGeneral     NotificationType = "general"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
