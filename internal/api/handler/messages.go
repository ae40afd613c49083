package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindcare/backend/internal/models"
	"mindcare/backend/internal/storage"
)

// GetChatHistory returns the appointment's message backlog in creation
// order. Clients load it when entering a room, before live relay takes
// over. Only participants and admins may read it.
func (h *Handler) GetChatHistory(c *gin.Context) {
	appointmentID := c.Param("id")
	identity := currentIdentity(c)

	if identity.Role != models.RoleAdmin {
		appt, err := h.Store.GetAppointmentByID(appointmentID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load appointment"})
			return
		}
		if !appt.Involves(identity.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this appointment"})
			return
		}
	}

	history, err := h.Store.GetChatHistory(appointmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}
