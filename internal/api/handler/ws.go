package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mindcare/backend/internal/auth"
	"mindcare/backend/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection. A bearer token on the
// handshake is the fast path; without one the client gets until the auth
// deadline to send an authenticate frame. An invalid handshake token
// rejects the connection outright, no state mutated.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	var identity *auth.Identity
	if token := bearerToken(c); token != "" {
		id, err := h.Auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		identity = &id
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied to the handshake; writing again would be a
		// second response.
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := realtime.NewWebSocketClient(h.Hub, conn, h.Auth, identity)
	if identity != nil {
		h.Hub.RegisterCh <- client
	}
	client.Run()
}
