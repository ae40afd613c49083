package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mindcare/backend/internal/models"
	"mindcare/backend/internal/storage"
)

// ListNotifications returns the caller's unread backlog: direct,
// role-scoped, and global notifications. Clients call this on login to
// catch up on anything pushed while they were offline.
func (h *Handler) ListNotifications(c *gin.Context) {
	identity := currentIdentity(c)
	notifications, err := h.Store.GetUnreadNotifications(identity.UserID, identity.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead flips the read flag on one of the caller's direct
// notifications. Shared role and global entries cannot be marked here;
// clients track those locally.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}
	identity := currentIdentity(c)
	if err := h.Store.MarkNotificationRead(uint(id), identity.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotification removes a notification owned by the caller.
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}
	identity := currentIdentity(c)
	if err := h.Store.DeleteNotification(uint(id), identity.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	c.Status(http.StatusNoContent)
}

type dispatchRequest struct {
	Scope         models.NotificationScope `json:"scope" binding:"required"`
	RecipientID   string                   `json:"recipientId"`
	RecipientRole models.Role              `json:"recipientRole"`
	Type          string                   `json:"type" binding:"required"`
	Title         string                   `json:"title" binding:"required"`
	Message       string                   `json:"message"`
}

// DispatchNotification lets the booking service (or an admin) trigger a
// fan-out: the notification is saved as durable backlog, then published to
// Redis so every node pushes it to its live connections.
func (h *Handler) DispatchNotification(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Scope {
	case models.ScopeUser:
		if req.RecipientID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipientId is required for user scope"})
			return
		}
	case models.ScopeRole:
		if !req.RecipientRole.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipientRole is required for role scope"})
			return
		}
	case models.ScopeGlobal:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scope"})
		return
	}

	n := models.Notification{
		Scope:         req.Scope,
		RecipientID:   req.RecipientID,
		RecipientRole: req.RecipientRole,
		Type:          req.Type,
		Title:         req.Title,
		Message:       req.Message,
	}
	if err := h.Store.SaveNotification(&n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save notification"})
		return
	}
	if err := h.Store.PublishNotification(n); err != nil {
		// The backlog row is durable; only the live push failed.
		c.JSON(http.StatusAccepted, gin.H{"notification": n, "warning": "live push failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notification": n})
}
