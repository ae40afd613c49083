package realtime

import (
	"encoding/json"
	"strings"
	"time"

	"mindcare/backend/internal/models"
)

// handleSend validates, persists, and broadcasts one chat message. The
// insert must complete before any broadcast so every recipient sees the
// canonical record with its server-assigned id and timestamp. On failure
// nothing is broadcast and only the sender hears about it.
func (h *Hub) handleSend(c Client, data json.RawMessage) error {
	var p models.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return &ValidationError{Reason: "malformed send-message payload"}
	}

	if p.SenderID != c.UserID() {
		h.Metrics.SendFailed("spoofed_sender")
		return &ValidationError{Reason: "senderId does not match the authenticated user"}
	}

	members := h.rooms[p.AppointmentID]
	if _, joined := members[c.ConnID()]; !joined {
		h.Metrics.SendFailed("not_joined")
		return &ValidationError{Reason: "join the appointment before sending"}
	}

	// Typing indicators are relayed to the counterpart but never persisted.
	if p.MessageType == models.MessageTypeTyping {
		h.broadcastRoom(p.AppointmentID, models.NewEvent(models.EventReceive, models.ChatMessage{
			AppointmentID: p.AppointmentID,
			SenderID:      p.SenderID,
			MessageType:   models.MessageTypeTyping,
			CreatedAt:     time.Now(),
		}), c.ConnID())
		return nil
	}

	content := strings.TrimSpace(p.Content)
	if content == "" {
		h.Metrics.SendFailed("empty_content")
		return &ValidationError{Reason: "message content is empty"}
	}

	msgType := p.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	msg := &models.ChatMessage{
		AppointmentID: p.AppointmentID,
		SenderID:      p.SenderID,
		Content:       content,
		MessageType:   msgType,
	}
	if err := h.Store.InsertMessage(msg); err != nil {
		h.Metrics.SendFailed("persistence")
		return &PersistenceError{Err: err}
	}

	h.Metrics.MessageRelayed()
	// Everyone in the room gets the message, the sender's own connections
	// included, so multi-tab clients stay in sync.
	h.broadcastRoom(p.AppointmentID, models.NewEvent(models.EventReceive, *msg), "")
	return nil
}

// handleMarkRead bulk-marks all counterpart messages in the room as read
// and tells the other connections so senders can flip their delivery
// indicators. The store's is_read guard keeps the flag monotonic.
func (h *Hub) handleMarkRead(c Client, data json.RawMessage) error {
	var p models.MarkReadPayload
	if err := json.Unmarshal(data, &p); err != nil || p.AppointmentID == "" {
		return &ValidationError{Reason: "malformed mark_messages_read payload"}
	}

	members := h.rooms[p.AppointmentID]
	if _, joined := members[c.ConnID()]; !joined {
		return &ValidationError{Reason: "join the appointment before marking messages read"}
	}

	if err := h.Store.MarkMessagesRead(p.AppointmentID, c.UserID()); err != nil {
		return &PersistenceError{Err: err}
	}

	h.Metrics.ReadReceipt()
	h.broadcastRoom(p.AppointmentID, models.NewEvent(models.EventMessagesRead, models.MessagesReadPayload{
		AppointmentID: p.AppointmentID,
		ReaderID:      c.UserID(),
		At:            time.Now(),
	}), c.ConnID())
	return nil
}
