// Package alerts pushes admin-scoped notifications to a Telegram chat so
// the on-call team sees them without watching the dashboard. The bridge is
// a plain Pub/Sub consumer; when it is not configured the realtime layer
// behaves exactly the same.
package alerts

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"mindcare/backend/internal/models"
)

// Notifier forwards admin notifications to one Telegram chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifier authenticates the bot. chatID is the numeric Telegram chat the
// alerts go to.
func NewNotifier(token, chatID string) (*Notifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Alert bridge authorized on account %s", bot.Self.UserName)

	return &Notifier{BotAPI: bot, ChatID: id}, nil
}

// Run consumes the notification Pub/Sub channel and forwards admin-scoped
// entries. Blocks until the subscription is closed.
func (n *Notifier) Run(sub *redis.PubSub) {
	defer sub.Close()

	for msg := range sub.Channel() {
		var notification models.Notification
		if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
			log.Printf("ERROR: Failed to decode notification for alert bridge: %v", err)
			continue
		}
		if notification.Scope != models.ScopeRole || notification.RecipientRole != models.RoleAdmin {
			continue
		}

		text := fmt.Sprintf("[%s] %s\n%s", notification.Type, notification.Title, notification.Message)
		if _, err := n.BotAPI.Send(tgbotapi.NewMessage(n.ChatID, text)); err != nil {
			log.Printf("ERROR: Failed to forward admin alert to Telegram: %v", err)
		}
	}
}
