package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mindcare/backend/internal/auth"
	"mindcare/backend/internal/config"
	"mindcare/backend/internal/models"
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	connID   string
	identity auth.Identity
	authed   bool

	Authenticator auth.Authenticator
	Conn          *websocket.Conn
	Hub           *Hub
	Send          chan models.Event
}

// NewWebSocketClient wraps an upgraded connection. A non-nil identity means
// the handshake already carried a valid bearer token; otherwise the first
// frame must be an authenticate event, and the connection is closed if none
// arrives before the auth deadline.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, authenticator auth.Authenticator, identity *auth.Identity) *WebSocketClient {
	c := &WebSocketClient{
		connID:        uuid.New().String(),
		Authenticator: authenticator,
		Conn:          conn,
		Hub:           hub,
		Send:          make(chan models.Event, config.SendBufferSize),
	}
	if identity != nil {
		c.identity = *identity
		c.authed = true
	}
	return c
}

func (c *WebSocketClient) ConnID() string                   { return c.connID }
func (c *WebSocketClient) UserID() string                   { return c.identity.UserID }
func (c *WebSocketClient) Role() models.Role                { return c.identity.Role }
func (c *WebSocketClient) SendChannel() chan<- models.Event { return c.Send }

// Authenticated reports whether the connection has resolved an identity.
func (c *WebSocketClient) Authenticated() bool { return c.authed }

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump; the read pump
// stops itself once the underlying connection is closed.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		if c.authed {
			c.Hub.UnregisterCh <- c
			c.Conn.Close()
		} else {
			// Never registered, so the hub will not close the send channel.
			// Closing it here stops the write pump, which flushes any queued
			// rejection event and then closes the socket itself.
			close(c.Send)
		}
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	if c.authed {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	} else {
		c.Conn.SetReadDeadline(time.Now().Add(config.AuthWait))
	}
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading from connection %s: %v", c.connID, err)
			}
			break
		}

		var frame models.Event
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Error decoding frame from connection %s: %v", c.connID, err)
			continue
		}

		if !c.authed {
			if !c.handleAuthFrame(frame) {
				return
			}
			continue
		}

		if frame.Event == models.EventAuthenticate {
			continue
		}
		c.Hub.EventCh <- InboundEvent{Client: c, Frame: frame}
	}
}

// handleAuthFrame processes the mandatory first frame of an unauthenticated
// connection. Returns false when the connection must be dropped; no hub
// state is mutated on rejection, and readPump's deferred close of the send
// channel tears down the write pump.
func (c *WebSocketClient) handleAuthFrame(frame models.Event) bool {
	if frame.Event != models.EventAuthenticate {
		c.Send <- models.NewEvent(models.EventError, models.ErrorPayload{Message: "authenticate first"})
		return false
	}

	var p models.AuthPayload
	if err := json.Unmarshal(frame.Data, &p); err != nil || p.Token == "" {
		c.Send <- models.NewEvent(models.EventError, models.ErrorPayload{Message: "missing credential token"})
		return false
	}

	identity, err := c.Authenticator.Authenticate(p.Token)
	if err != nil {
		log.Printf("Rejected connection %s: %v", c.connID, err)
		c.Send <- models.NewEvent(models.EventError, models.ErrorPayload{Message: "invalid or expired token"})
		return false
	}

	c.identity = identity
	c.authed = true
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Hub.RegisterCh <- c
	return true
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Channel closed by the hub, close the socket.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding event for connection %s: %v", c.connID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Flush whatever else is already queued into the same write.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				next, ok := <-c.Send
				if !ok {
					break
				}
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
