package realtime

import (
	"log"

	"mindcare/backend/internal/models"
)

// deliverNotification fans a notification out to every matching live
// connection. Delivery is best-effort and real-time only: a user who is
// offline right now finds the notification in the durable backlog on next
// login, this layer never retries.
func (h *Hub) deliverNotification(n models.Notification) {
	ev := models.NewEvent(n.EventName(), n)
	delivered := 0

	switch n.Scope {
	case models.ScopeUser:
		for connID := range h.userConns[n.RecipientID] {
			if c, ok := h.Clients[connID]; ok {
				h.deliver(c, ev)
				delivered++
			}
		}
	case models.ScopeRole:
		for _, c := range h.Clients {
			if c.Role() == n.RecipientRole {
				h.deliver(c, ev)
				delivered++
			}
		}
	case models.ScopeGlobal:
		for _, c := range h.Clients {
			h.deliver(c, ev)
			delivered++
		}
	default:
		log.Printf("WARNING: notification with unknown scope %q dropped", n.Scope)
		return
	}

	h.Metrics.NotificationDispatched(string(n.Scope))
	log.Printf("Notification %q (scope %s) delivered to %d connections", n.Type, n.Scope, delivered)
}
