package models

import (
	"encoding/json"
	"time"
)

// Event names exchanged over the realtime socket. The mixed naming follows
// the event surface the web client already listens on.
const (
	EventAuthenticate = "authenticate"
	EventJoin         = "join_appointment"
	EventLeave        = "leave_appointment"
	EventSendMessage  = "send-message"
	EventReceive      = "receive-message"
	EventMarkRead     = "mark_messages_read"
	EventMessagesRead = "messages_read"
	EventOnlineList   = "online_users_list"
	EventStatusChange = "user_status_change"
	EventError        = "error"
)

// Event is the wire envelope for every frame in both directions. Data is
// kept raw on receipt and decoded per event name.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals the payload into an outbound envelope. Marshal failures
// are programmer errors (all payloads are plain structs), so they surface as
// an empty data field rather than an error return.
func NewEvent(name string, payload interface{}) Event {
	data, _ := json.Marshal(payload)
	return Event{Event: name, Data: data}
}

// AuthPayload carries the session token for a first-frame authenticate.
type AuthPayload struct {
	Token string `json:"token"`
}

// SendMessagePayload is the client's send-message request.
type SendMessagePayload struct {
	AppointmentID string `json:"appointmentId"`
	SenderID      string `json:"senderId"`
	Content       string `json:"content"`
	MessageType   string `json:"messageType"`
}

// MarkReadPayload asks for all counterpart messages in a room to be marked read.
type MarkReadPayload struct {
	AppointmentID string `json:"appointmentId"`
}

// MessagesReadPayload notifies senders that their messages were read.
type MessagesReadPayload struct {
	AppointmentID string    `json:"appointmentId"`
	ReaderID      string    `json:"readerId"`
	At            time.Time `json:"at"`
}

// OnlineUser is one entry of the online_users_list snapshot.
type OnlineUser struct {
	UserID      string    `json:"userId"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// StatusChangePayload is the incremental presence delta.
type StatusChangePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"` // "online" or "offline"
}

// ErrorPayload is surfaced only to the offending connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
