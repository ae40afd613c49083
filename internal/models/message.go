package models

import "time"

// Message types carried by the chat relay. Typing indicators are relayed
// but never persisted.
const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeTyping = "typing"
)

// ChatMessage is a persisted message inside one appointment's conversation.
// The row is immutable after insert except for IsRead, which only ever
// transitions false to true.
type ChatMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AppointmentID string    `gorm:"type:uuid;not null;index:idx_appt_msg" json:"appointmentId"`
	SenderID      string    `gorm:"type:uuid;not null;index:idx_appt_msg" json:"senderId"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	MessageType   string    `gorm:"type:text;not null;default:text" json:"messageType"`
	IsRead        bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}
