package storage

import (
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"mindcare/backend/internal/config"
	"mindcare/backend/internal/models"
)

// PublishNotification pushes the notification onto the cross-node Pub/Sub
// channel so every server process fans it out to its own connections.
func (s *Service) PublishNotification(n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.NotificationsChannel, payload).Err()
}

// SubscribeNotifications subscribes to the cross-node notification channel.
func (s *Service) SubscribeNotifications() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.NotificationsChannel)
}

// AddOnlineUser mirrors a presence-online transition into the shared Redis
// set. The in-memory set in the hub stays authoritative for this node.
func (s *Service) AddOnlineUser(userID string) error {
	return s.Redis.SAdd(s.Ctx, config.PresenceKey, userID).Err()
}

// RemoveOnlineUser mirrors a presence-offline transition.
func (s *Service) RemoveOnlineUser(userID string) error {
	return s.Redis.SRem(s.Ctx, config.PresenceKey, userID).Err()
}

// GetOnlineUsers lists the mirrored online set across all nodes.
func (s *Service) GetOnlineUsers() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, config.PresenceKey).Result()
}
