// Package realtime is the in-memory core of the chat layer: it owns the
// connection table, room membership, and the presence set, and fans out
// messages and notifications to live connections. All three registries are
// mutated only from the single Run goroutine, so no further locking is
// needed.
package realtime

import (
	"log"
	"time"

	"mindcare/backend/internal/metrics"
	"mindcare/backend/internal/models"
	"mindcare/backend/internal/storage"
)

// InboundEvent is one decoded frame from a registered connection.
type InboundEvent struct {
	Client Client
	Frame  models.Event
}

// Hub coordinates every live connection on this node.
type Hub struct {
	// Clients maps connection IDs to live clients.
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent
	NotifyCh     chan models.Notification

	Store   storage.Store
	Metrics *metrics.Collector

	rooms     map[string]map[string]Client   // room id -> conn id -> client
	userConns map[string]map[string]struct{} // user id -> conn ids
	presence  map[string]time.Time           // user id -> connected at
}

func NewHub(s storage.Store, m *metrics.Collector) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent),
		NotifyCh:     make(chan models.Notification),
		Store:        s,
		Metrics:      m,
		rooms:        make(map[string]map[string]Client),
		userConns:    make(map[string]map[string]struct{}),
		presence:     make(map[string]time.Time),
	}
}

// Run is the hub's dispatch loop. Every inbound connection event is handled
// as one atomically-observed step; the only blocking call inside a step is
// the persistence write during a send, which also serializes per-room
// message order.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.RegisterCh:
			h.handleRegister(c)
		case c := <-h.UnregisterCh:
			h.handleUnregister(c)
		case ev := <-h.EventCh:
			h.handleEvent(ev)
		case n := <-h.NotifyCh:
			h.deliverNotification(n)
		}
	}
}

func (h *Hub) handleRegister(c Client) {
	h.Clients[c.ConnID()] = c
	conns := h.userConns[c.UserID()]
	if conns == nil {
		conns = make(map[string]struct{})
		h.userConns[c.UserID()] = conns
	}
	conns[c.ConnID()] = struct{}{}
	h.Metrics.ConnectionOpened()

	// First connection for this user flips them online.
	if len(conns) == 1 {
		h.presence[c.UserID()] = time.Now()
		if err := h.Store.AddOnlineUser(c.UserID()); err != nil {
			log.Printf("WARNING: failed to mirror presence for %s: %v", c.UserID(), err)
		}
		h.Metrics.UserOnline()
		h.broadcastAll(models.NewEvent(models.EventStatusChange, models.StatusChangePayload{
			UserID: c.UserID(),
			Status: "online",
		}))
	}

	// The new connection gets a full snapshot so it knows immediately who
	// is already online.
	h.deliver(c, models.NewEvent(models.EventOnlineList, h.ListOnline()))
	log.Printf("Registered connection %s for user %s", c.ConnID(), c.UserID())
}

// handleUnregister removes the connection from every registry in one
// synchronous step. Disconnects are normal lifecycle, not errors; the only
// thing other clients see is the presence-offline signal.
func (h *Hub) handleUnregister(c Client) {
	if _, ok := h.Clients[c.ConnID()]; !ok {
		return
	}
	delete(h.Clients, c.ConnID())

	for roomID, members := range h.rooms {
		if _, ok := members[c.ConnID()]; ok {
			delete(members, c.ConnID())
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	conns := h.userConns[c.UserID()]
	delete(conns, c.ConnID())
	h.Metrics.ConnectionClosed()
	c.Close()

	if len(conns) == 0 {
		delete(h.userConns, c.UserID())
		delete(h.presence, c.UserID())
		if err := h.Store.RemoveOnlineUser(c.UserID()); err != nil {
			log.Printf("WARNING: failed to clear presence mirror for %s: %v", c.UserID(), err)
		}
		h.Metrics.UserOffline()
		h.broadcastAll(models.NewEvent(models.EventStatusChange, models.StatusChangePayload{
			UserID: c.UserID(),
			Status: "offline",
		}))
	}
	log.Printf("Unregistered connection %s for user %s", c.ConnID(), c.UserID())
}

func (h *Hub) handleEvent(ev InboundEvent) {
	c := ev.Client
	if _, ok := h.Clients[c.ConnID()]; !ok {
		return
	}

	var err error
	switch ev.Frame.Event {
	case models.EventJoin:
		err = h.handleJoin(c, ev.Frame.Data)
	case models.EventLeave:
		err = h.handleLeave(c, ev.Frame.Data)
	case models.EventSendMessage:
		err = h.handleSend(c, ev.Frame.Data)
	case models.EventMarkRead:
		err = h.handleMarkRead(c, ev.Frame.Data)
	default:
		err = &ValidationError{Reason: "unknown event: " + ev.Frame.Event}
	}
	if err != nil {
		h.sendError(c, err)
	}
}

// sendError surfaces a rejected request to the offending connection only.
func (h *Hub) sendError(c Client, err error) {
	log.Printf("Event from connection %s rejected: %v", c.ConnID(), err)
	h.deliver(c, models.NewEvent(models.EventError, models.ErrorPayload{Message: err.Error()}))
}

// deliver queues an event for one connection without blocking the loop.
// A connection whose buffer is full is considered dead and dropped.
func (h *Hub) deliver(c Client, ev models.Event) {
	if _, ok := h.Clients[c.ConnID()]; !ok {
		return
	}
	select {
	case c.SendChannel() <- ev:
	default:
		log.Printf("WARNING: send buffer full for connection %s, dropping it", c.ConnID())
		h.handleUnregister(c)
	}
}

func (h *Hub) broadcastAll(ev models.Event) {
	for _, c := range h.Clients {
		h.deliver(c, ev)
	}
}

// ListOnline snapshots the online set. A user is listed iff at least one of
// their connections is currently registered.
func (h *Hub) ListOnline() []models.OnlineUser {
	out := make([]models.OnlineUser, 0, len(h.presence))
	for userID, since := range h.presence {
		out = append(out, models.OnlineUser{UserID: userID, ConnectedAt: since})
	}
	return out
}

// IsOnline reports whether the user has at least one registered connection.
func (h *Hub) IsOnline(userID string) bool {
	_, ok := h.presence[userID]
	return ok
}

// RoomSize returns the number of connections currently joined to the room.
func (h *Hub) RoomSize(roomID string) int {
	return len(h.rooms[roomID])
}
