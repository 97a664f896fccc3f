package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/skyticket/internal/service/notifications"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service notifications.NotificationUseCase
}

func NewNotificationHandler(service notifications.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.PATCH("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	query := notifications.ListQuery{Type: c.Query("type")}
	var err error
	if query.Page, err = intQuery(c, "page"); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid page")
		return
	}
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid limit")
		return
	}

	page, err := h.service.List(c.Request.Context(), userID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success fetching notifications", page)
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Notification marked as read", nil)
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
