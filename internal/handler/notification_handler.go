package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/domain/entity"
	"github.com/yourusername/edu-api/internal/handler/dto"
	"github.com/yourusername/edu-api/internal/service"
	"github.com/yourusername/edu-api/internal/websocket"
)

// NotificationHandler отдает уведомления текущего пользователя
type NotificationHandler struct {
	notificationService *service.NotificationService
	stream              *websocket.NotificationStream
}

// NewNotificationHandler создает новый обработчик уведомлений.
// stream может быть nil, если публикация уведомлений отключена.
func NewNotificationHandler(notificationService *service.NotificationService, stream *websocket.NotificationStream) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, stream: stream}
}

// ListUnsent возвращает недоставленные уведомления
func (h *NotificationHandler) ListUnsent(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	notifications, err := h.notificationService.ListUnsent(c.Request.Context(), identity.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

// ConfirmSent отмечает уведомления доставленными в Telegram
func (h *NotificationHandler) ConfirmSent(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req dto.ConfirmNotificationsRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.notificationService.ConfirmSent(c.Request.Context(), identity.UserID, req.IDs)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Stream переводит соединение в WebSocket и пересылает новые уведомления пользователя
func (h *NotificationHandler) Stream(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notification stream is disabled", "error_type": "stream_disabled"})
		return
	}
	if err := h.stream.Serve(c.Writer, c.Request, identity.UserID); err != nil {
		log.Printf("[NotificationHandler] Не удалось подписать пользователя %s на уведомления: %v", identity.UserID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notification stream unavailable", "error_type": "store_unavailable"})
	}
}
