package realtime

import (
	"encoding/json"
	"errors"
	"log"

	"mindcare/backend/internal/models"
	"mindcare/backend/internal/storage"
)

// decodeRoomID accepts either a bare JSON string or an object carrying the
// appointment id; the web client has used both shapes.
func decodeRoomID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil && id != "" {
		return id, nil
	}
	var obj struct {
		AppointmentID string `json:"appointmentId"`
		RoomID        string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.AppointmentID != "" {
			return obj.AppointmentID, nil
		}
		if obj.RoomID != "" {
			return obj.RoomID, nil
		}
	}
	return "", &ValidationError{Reason: "missing appointment id"}
}

// handleJoin adds the connection to the room, creating the room on first
// join. Joining twice is a no-op. Non-admins must be a participant of the
// appointment.
func (h *Hub) handleJoin(c Client, data json.RawMessage) error {
	roomID, err := decodeRoomID(data)
	if err != nil {
		return err
	}
	if err := h.authorizeRoom(c, roomID); err != nil {
		return err
	}

	members := h.rooms[roomID]
	if members == nil {
		members = make(map[string]Client)
		h.rooms[roomID] = members
	}
	members[c.ConnID()] = c
	log.Printf("Connection %s (user %s) joined room %s", c.ConnID(), c.UserID(), roomID)
	return nil
}

// handleLeave removes the connection from the room; leaving a room the
// connection never joined is a safe no-op. Empty rooms are dropped so the
// index does not grow without bound.
func (h *Hub) handleLeave(c Client, data json.RawMessage) error {
	roomID, err := decodeRoomID(data)
	if err != nil {
		return err
	}
	members := h.rooms[roomID]
	if members == nil {
		return nil
	}
	delete(members, c.ConnID())
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	log.Printf("Connection %s left room %s", c.ConnID(), roomID)
	return nil
}

// authorizeRoom checks that the caller may enter the appointment's room.
// Admins can enter any room for moderation.
func (h *Hub) authorizeRoom(c Client, roomID string) error {
	if c.Role() == models.RoleAdmin {
		return nil
	}
	appt, err := h.Store.GetAppointmentByID(roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return &ValidationError{Reason: "unknown appointment " + roomID}
	}
	if err != nil {
		return &PersistenceError{Err: err}
	}
	if !appt.Involves(c.UserID()) {
		return &ValidationError{Reason: "not a participant of this appointment"}
	}
	return nil
}

// broadcastRoom delivers the event to every connection in the room. An
// empty exceptConnID means nobody is excluded.
func (h *Hub) broadcastRoom(roomID string, ev models.Event, exceptConnID string) {
	for _, member := range h.rooms[roomID] {
		if member.ConnID() == exceptConnID {
			continue
		}
		h.deliver(member, ev)
	}
}
