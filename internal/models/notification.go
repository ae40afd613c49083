package models

import "time"

// NotificationScope selects who a notification is fanned out to.
type NotificationScope string

const (
	ScopeUser   NotificationScope = "user"
	ScopeRole   NotificationScope = "role"
	ScopeGlobal NotificationScope = "global"
)

// Notification is an asynchronous push to one user, one role group, or
// everyone. The realtime layer only delivers live deltas; the row itself is
// the durable backlog a client fetches over REST after connecting.
type Notification struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Scope         NotificationScope `gorm:"type:text;not null;index" json:"scope"`
	RecipientID   string            `gorm:"type:uuid;index" json:"recipientId,omitempty"`
	RecipientRole Role              `gorm:"type:text;index" json:"recipientRole,omitempty"`
	Type          string            `gorm:"type:text;not null" json:"type"`
	Title         string            `gorm:"type:text;not null" json:"title"`
	Message       string            `gorm:"type:text" json:"message"`
	IsRead        bool              `gorm:"not null;default:false" json:"isRead"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// MatchesUser reports whether the notification should be delivered to a
// connection authenticated as the given user and role.
func (n *Notification) MatchesUser(userID string, role Role) bool {
	switch n.Scope {
	case ScopeUser:
		return n.RecipientID == userID
	case ScopeRole:
		return n.RecipientRole == role
	case ScopeGlobal:
		return true
	}
	return false
}

// EventName maps the scope to the event the client listens on. Role pushes
// to admins use a dedicated event so the admin dashboard can subscribe
// separately from regular role traffic.
func (n *Notification) EventName() string {
	switch n.Scope {
	case ScopeRole:
		if n.RecipientRole == RoleAdmin {
			return "admin_notification"
		}
		return "role_notification"
	case ScopeGlobal:
		return "global_notification"
	}
	return "notification"
}
