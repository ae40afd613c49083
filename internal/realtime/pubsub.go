package realtime

import (
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"mindcare/backend/internal/models"
)

// RunNotificationListener consumes the cross-node Redis Pub/Sub channel and
// feeds each notification into the hub's dispatch loop. Dispatchers never
// deliver locally themselves; publishing to Redis is the single fan-out
// path, so a multi-process deployment behaves the same as one process.
// Blocks until the subscription is closed.
func (h *Hub) RunNotificationListener(sub *redis.PubSub) {
	defer sub.Close()

	for msg := range sub.Channel() {
		var n models.Notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			log.Printf("ERROR: Failed to decode notification from pubsub: %v", err)
			continue
		}
		h.NotifyCh <- n
	}
}
