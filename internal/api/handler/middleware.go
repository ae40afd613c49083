package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mindcare/backend/internal/auth"
	"mindcare/backend/internal/models"
)

const identityKey = "identity"

// bearerToken extracts the credential from the Authorization header, falling
// back to the token query parameter (browsers cannot set headers on a
// WebSocket handshake).
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// AuthRequired resolves the bearer token to an identity and stores it in the
// request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		identity, err := h.Auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// AdminRequired guards endpoints reserved for admin identities. Must run
// after AuthRequired.
func (h *Handler) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentIdentity(c).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) auth.Identity {
	identity, _ := c.Get(identityKey)
	id, _ := identity.(auth.Identity)
	return id
}
