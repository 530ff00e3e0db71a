package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/realtime"
	"github.com/localbookr/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// NotificationHandler serves the in-app notification inbox and its live feed
type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *realtime.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

// List handles GET /api/v1/notifications?limit=
func (h *NotificationHandler) List(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.notifications.List(c.Request.Context(), userCtx.UserID, limit)
	if err != nil {
		respondError(c, err, "notifications_retrieval_failed")
		return
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userCtx.UserID, id); err != nil {
		respondError(c, err, "notification_update_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// Stream handles GET /api/v1/notifications/ws. The upgrade writes its own
// error response when the handshake fails.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, userCtx.UserID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userCtx.UserID,
			"error":   err.Error(),
		}).Warn("Notification stream not opened")
	}
}
