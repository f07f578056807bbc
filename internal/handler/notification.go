package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/service"
)

// NotificationHandler serves activity feeds.
type NotificationHandler struct {
	notifier *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifier *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// NotificationResponse is the HTTP representation of a feed entry.
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// Feed handles GET /v1/owners/:id/notifications
func (h *NotificationHandler) Feed(c *gin.Context) {
	notifications, err := h.notifier.Feed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, toNotificationResponse(n))
	}
	respondJSON(c, http.StatusOK, response)
}
